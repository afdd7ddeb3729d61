package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// recordingProvisioner tracks how many calls per subject run at the same time.
type recordingProvisioner struct {
	mu       sync.Mutex
	inFlight map[string]int
	maxSeen  map[string]int
	calls    atomic.Int32
	block    chan struct{}
}

func newRecordingProvisioner() *recordingProvisioner {
	return &recordingProvisioner{inFlight: map[string]int{}, maxSeen: map[string]int{}}
}

func (p *recordingProvisioner) EnsureResources(_ context.Context, subjectID string) domain.ProvisionResult {
	p.calls.Add(1)
	p.mu.Lock()
	p.inFlight[subjectID]++
	if p.inFlight[subjectID] > p.maxSeen[subjectID] {
		p.maxSeen[subjectID] = p.inFlight[subjectID]
	}
	p.mu.Unlock()

	if p.block != nil {
		<-p.block
	} else {
		time.Sleep(5 * time.Millisecond)
	}

	p.mu.Lock()
	p.inFlight[subjectID]--
	p.mu.Unlock()
	return domain.ProvisionResult{SubjectID: subjectID}
}

func (p *recordingProvisioner) maxConcurrent(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSeen[subject]
}

func startDispatcher(t *testing.T, workers int, inner *recordingProvisioner) *Dispatcher {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d := NewDispatcher(workers, inner, zerolog.Nop())
	d.Start(ctx)
	return d
}

func TestDispatcher_SerializesSameSubject(t *testing.T) {
	inner := newRecordingProvisioner()
	d := startDispatcher(t, 4, inner)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := d.EnsureResources(context.Background(), "u1")
			assert.Equal(t, "u1", res.SubjectID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), inner.calls.Load())
	assert.Equal(t, 1, inner.maxConcurrent("u1"))
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(5, newRecordingProvisioner(), zerolog.Nop())
	for _, s := range []string{"u1", "github-42", "1098"} {
		first := d.shardIndex(s)
		require.GreaterOrEqual(t, first, 0)
		require.Less(t, first, 5)
		assert.Equal(t, first, d.shardIndex(s))
	}
}

func TestDispatcher_CallerGivesUp(t *testing.T) {
	inner := newRecordingProvisioner()
	inner.block = make(chan struct{})
	defer close(inner.block)
	d := startDispatcher(t, 1, inner)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := d.EnsureResources(ctx, "u1")
	require.Len(t, res.Outcomes, len(domain.Categories()))
	assert.Len(t, res.Failed(), len(domain.Categories()))
	assert.True(t, errors.Is(res.Err(), context.DeadlineExceeded))
	assert.ErrorIs(t, res.Err(), domain.ErrProvisioningPartialFailure)
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, newRecordingProvisioner(), zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
}
