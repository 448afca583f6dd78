package models

import (
	"context"
	"fmt"

	"github.com/Temutjin2k/rideshare-ledger/internal/domain/types"
	"github.com/google/uuid"
)

// Identity is the caller / participant reference. Its string form is the
// canonical lowercase hyphenated UUID, so ride membership (keyed by string)
// and ledger accounts (keyed by Identity) convert without loss.
type Identity struct {
	id uuid.UUID
}

// Anonymous is the reserved identity rejected by every mutating ledger call.
var Anonymous = Identity{id: uuid.Nil}

func NewIdentity() Identity {
	return Identity{id: uuid.New()}
}

// IdentityFromUUID wraps an existing UUID.
func IdentityFromUUID(id uuid.UUID) Identity {
	return Identity{id: id}
}

// ParseIdentity accepts only the canonical encoding produced by String.
func ParseIdentity(s string) (Identity, error) {
	id, err := uuid.Parse(s)
	if err != nil || id.String() != s {
		return Anonymous, fmt.Errorf("%w: %q", types.ErrInvalidIdentity, s)
	}
	return Identity{id: id}, nil
}

func (i Identity) IsAnonymous() bool {
	return i.id == uuid.Nil
}

func (i Identity) String() string {
	return i.id.String()
}

func (i Identity) UUID() uuid.UUID {
	return i.id
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(b []byte) error {
	id, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

type callerKey struct{}

// WithCaller stores the authenticated caller in ctx.
func WithCaller(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFromContext returns the caller or Anonymous when none was set.
func CallerFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(callerKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
