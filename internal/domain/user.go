package domain

import (
	"context"
	"time"
)

// User is a directory user. IdentityToken is the subject issued by the
// identity provider; Login is the e-mail local part used by the feed sync.
type User struct {
	ID            string    `json:"id"`
	IdentityToken string    `json:"-"`
	Login         string    `json:"login"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Caller is the authenticated principal of a request. A nil *Caller means
// the request never went through authentication. Email comes from the
// token and links a first-time subject to its directory user.
type Caller struct {
	IdentityToken string
	Email         string
}

// UserDirectory resolves directory users. Lookups return (nil, nil) when
// the user does not exist.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// ResolveCaller returns the user linked to the identity token. An
	// unlinked token is linked to the user with the given login, which is
	// created if needed; a login already linked to another token is never
	// taken over. An empty login only looks up existing links.
	ResolveCaller(ctx context.Context, token, login, email string) (*User, error)
	// SyncByLogin returns the user with the given login, creating it or
	// refreshing its e-mail as needed.
	SyncByLogin(ctx context.Context, login, email string) (*User, error)
}
