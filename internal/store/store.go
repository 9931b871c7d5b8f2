// Package store defines the persistence contracts shared by the postgres,
// mongo and memory backends.
package store

import (
	"context"
	"errors"
	"time"

	"diagnostic-portal-api/internal/model"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

// Users is the identity store. Mobile is globally unique, email is unique
// when present.
type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByMobile(ctx context.Context, mobile string) (*model.User, error)
}

// Patch is a typed partial update. Fields is keyed by storage column name.
type Patch[T any] interface {
	Fields() map[string]any
	Apply(*T)
}

// Owned is a repository whose every read and write is scoped by the
// ownership predicate (id = :id AND user_id = :owner). A record owned by
// somebody else is indistinguishable from a missing one: both yield
// ErrNotFound.
type Owned[T any] interface {
	Create(ctx context.Context, rec *T) error
	List(ctx context.Context, owner string) ([]T, error)
	Get(ctx context.Context, id, owner string) (*T, error)
	Update(ctx context.Context, id, owner string, p Patch[T]) (*T, error)
	Delete(ctx context.Context, id, owner string) error
}

// Kind describes an owned entity to a backend.
type Kind[T any] struct {
	// Name is the table or collection.
	Name string
	// Order lists the columns List sorts by, each descending.
	Order []string
	ID    func(*T) string
	Owner func(*T) string
	// Before reports whether a sorts ahead of b under Order.
	Before func(a, b *T) bool
}

var Appointments = Kind[model.Appointment]{
	Name:  "appointments",
	Order: []string{"date", "created_at"},
	ID:    func(a *model.Appointment) string { return a.ID },
	Owner: func(a *model.Appointment) string { return a.UserID },
	Before: func(a, b *model.Appointment) bool {
		return newer(a.Date, b.Date, a.CreatedAt, b.CreatedAt)
	},
}

var Reports = Kind[model.Report]{
	Name:  "reports",
	Order: []string{"created_at"},
	ID:    func(r *model.Report) string { return r.ID },
	Owner: func(r *model.Report) string { return r.UserID },
	Before: func(a, b *model.Report) bool {
		return a.CreatedAt.After(b.CreatedAt)
	},
}

func newer(a, b, tieA, tieB time.Time) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return tieA.After(tieB)
}
