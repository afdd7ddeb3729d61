package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// memResourceStore is an in-memory ResourceStore that counts calls and can be
// told to fail or stall for specific resources.
type memResourceStore struct {
	mu        sync.Mutex
	resources map[string]*domain.SecurityDescriptor
	creates   map[string]int
	failOn    map[string]error
	stall     map[string]bool
}

func newMemResourceStore() *memResourceStore {
	return &memResourceStore{
		resources: make(map[string]*domain.SecurityDescriptor),
		creates:   make(map[string]int),
		failOn:    make(map[string]error),
		stall:     make(map[string]bool),
	}
}

func (s *memResourceStore) hook(ctx context.Context, name string) error {
	s.mu.Lock()
	err, stall := s.failOn[name], s.stall[name]
	s.mu.Unlock()
	if stall {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (s *memResourceStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := s.hook(ctx, name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.resources[name]
	return ok, nil
}

func (s *memResourceStore) Create(ctx context.Context, name string) error {
	if err := s.hook(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[name]; ok {
		return domain.ErrResourceExists
	}
	s.resources[name] = &domain.SecurityDescriptor{}
	s.creates[name]++
	return nil
}

func (s *memResourceStore) SetSecurity(ctx context.Context, name string, sec domain.SecurityDescriptor) error {
	if err := s.hook(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[name]; !ok {
		return errors.New("not found")
	}
	s.resources[name] = &sec
	return nil
}

func (s *memResourceStore) Ping(context.Context) error { return nil }

func (s *memResourceStore) totalCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.creates {
		n += c
	}
	return n
}

func (s *memResourceStore) ownedBy(subject string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sec := range s.resources {
		if len(sec.Members.Names) == 1 && sec.Members.Names[0] == subject {
			n++
		}
	}
	return n
}

// memStateStore is an in-memory StateStore.
type memStateStore struct {
	mu      sync.Mutex
	states  map[string]string
	saveErr error
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]string)}
}

func (s *memStateStore) Save(_ context.Context, state, provider string, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = provider
	return nil
}

func (s *memStateStore) Consume(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	provider, ok := s.states[state]
	if !ok {
		return "", domain.ErrStateNotFound
	}
	delete(s.states, state)
	return provider, nil
}

// stubProvider returns a fixed identity for any code.
type stubProvider struct {
	name       string
	identity   *domain.Identity
	err        error
	exchangeFn func(ctx context.Context, code string) (*domain.Identity, error)
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + state
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	if p.exchangeFn != nil {
		return p.exchangeFn(ctx, code)
	}
	if p.err != nil {
		return nil, p.err
	}
	id := *p.identity
	return &id, nil
}
