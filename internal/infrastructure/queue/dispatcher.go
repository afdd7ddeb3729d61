package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/seckernel/kernel-api/internal/core/domain"
	"github.com/seckernel/kernel-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 64
)

type job struct {
	ctx       context.Context
	subjectID string
	reply     chan domain.ProvisionResult
}

// Dispatcher routes provisioning requests to a fixed set of workers using
// consistent hashing on the subject id, so logins of the same user are
// provisioned one after another instead of racing on the store.
type Dispatcher struct {
	workers []chan job
	inner   ports.Provisioner
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers in front
// of inner. If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, inner ports.Provisioner, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		inner:   inner,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// EnsureResources queues the subject on its worker and waits for the result.
// If ctx ends first every category is reported failed with ctx.Err().
func (d *Dispatcher) EnsureResources(ctx context.Context, subjectID string) domain.ProvisionResult {
	j := job{ctx: ctx, subjectID: subjectID, reply: make(chan domain.ProvisionResult, 1)}

	select {
	case d.workers[d.shardIndex(subjectID)] <- j:
	case <-ctx.Done():
		return abandoned(subjectID, ctx.Err())
	}

	select {
	case res := <-j.reply:
		return res
	case <-ctx.Done():
		return abandoned(subjectID, ctx.Err())
	}
}

// shardIndex maps a subject id deterministically to a worker index.
func (d *Dispatcher) shardIndex(subjectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			if err := j.ctx.Err(); err != nil {
				d.log.Debug().Str("subject", j.subjectID).Int("worker_id", id).Msg("provisioning request abandoned")
				continue
			}
			// reply is buffered; a caller that gave up does not block the worker.
			j.reply <- d.inner.EnsureResources(j.ctx, j.subjectID)
		}
	}
}

func abandoned(subjectID string, err error) domain.ProvisionResult {
	categories := domain.Categories()
	res := domain.ProvisionResult{
		SubjectID: subjectID,
		Outcomes:  make([]domain.CategoryOutcome, len(categories)),
	}
	for i, c := range categories {
		res.Outcomes[i] = domain.CategoryOutcome{
			Category: c,
			Resource: domain.ResourceName(subjectID, c),
			Err:      err,
		}
	}
	return res
}
