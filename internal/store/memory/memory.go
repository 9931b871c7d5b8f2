// Package memory is an in-process store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

type Owned[T any] struct {
	mu   sync.RWMutex
	kind store.Kind[T]
	recs map[string]T
}

func NewOwned[T any](kind store.Kind[T]) *Owned[T] {
	return &Owned[T]{kind: kind, recs: make(map[string]T)}
}

func (o *Owned[T]) Create(_ context.Context, rec *T) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.kind.ID(rec)
	if _, ok := o.recs[id]; ok {
		return store.ErrConflict
	}
	o.recs[id] = *rec
	return nil
}

func (o *Owned[T]) List(_ context.Context, owner string) ([]T, error) {
	o.mu.RLock()
	out := []T{}
	for _, r := range o.recs {
		if o.kind.Owner(&r) == owner {
			out = append(out, r)
		}
	}
	o.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return o.kind.Before(&out[i], &out[j])
	})
	return out, nil
}

func (o *Owned[T]) Get(_ context.Context, id, owner string) (*T, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	r, ok := o.lookup(id, owner)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (o *Owned[T]) Update(_ context.Context, id, owner string, p store.Patch[T]) (*T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.lookup(id, owner)
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Apply(&r)
	o.recs[id] = r
	return &r, nil
}

func (o *Owned[T]) Delete(_ context.Context, id, owner string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.lookup(id, owner); !ok {
		return store.ErrNotFound
	}
	delete(o.recs, id)
	return nil
}

// caller holds o.mu
func (o *Owned[T]) lookup(id, owner string) (T, bool) {
	r, ok := o.recs[id]
	if !ok || o.kind.Owner(&r) != owner {
		var zero T
		return zero, false
	}
	return r, true
}

type Users struct {
	mu       sync.RWMutex
	byID     map[string]model.User
	byMobile map[string]string
	byEmail  map[string]string
}

func NewUsers() *Users {
	return &Users{
		byID:     make(map[string]model.User),
		byMobile: make(map[string]string),
		byEmail:  make(map[string]string),
	}
}

func (s *Users) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; ok {
		return store.ErrConflict
	}
	if _, ok := s.byMobile[u.Mobile]; ok {
		return store.ErrConflict
	}
	if u.Email != "" {
		if _, ok := s.byEmail[u.Email]; ok {
			return store.ErrConflict
		}
		s.byEmail[u.Email] = u.ID
	}
	s.byID[u.ID] = *u
	s.byMobile[u.Mobile] = u.ID
	return nil
}

func (s *Users) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Users) UserByMobile(ctx context.Context, mobile string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.byMobile[mobile]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.UserByID(ctx, id)
}

// DeleteUser removes an account. Only used to exercise orphaned tokens.
func (s *Users) DeleteUser(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	delete(s.byMobile, u.Mobile)
	if u.Email != "" {
		delete(s.byEmail, u.Email)
	}
}

// Store bundles the memory backends.
type Store struct {
	*Users
	Appointments *Owned[model.Appointment]
	Reports      *Owned[model.Report]
}

func New() *Store {
	return &Store{
		Users:        NewUsers(),
		Appointments: NewOwned(store.Appointments),
		Reports:      NewOwned(store.Reports),
	}
}
