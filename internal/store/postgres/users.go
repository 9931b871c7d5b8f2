package postgres

import (
	"context"

	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

// email is stored NULL when absent so the unique index only covers present values
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, full_name, email, mobile, avatar, password_hash, created_at)
		 VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7)`,
		u.ID, u.FullName, u.Email, u.Mobile, u.Avatar, u.PasswordHash, u.CreatedAt,
	)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	return s.userWhere(ctx, `id = $1`, id)
}

func (s *Store) UserByMobile(ctx context.Context, mobile string) (*model.User, error) {
	return s.userWhere(ctx, `mobile = $1`, mobile)
}

func (s *Store) userWhere(ctx context.Context, cond string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, full_name, COALESCE(email, ''), mobile, avatar, password_hash, created_at
		 FROM users WHERE `+cond, arg,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.Mobile, &u.Avatar, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}
