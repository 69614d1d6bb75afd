package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"marketplace-system/store"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 6

// LocalProvider keeps identities in the document store with bcrypt password
// hashes. It stands in for the hosted identity service in development and
// tests, and reports the same error codes.
type LocalProvider struct {
	Store store.Store
}

func NewLocalProvider(s store.Store) *LocalProvider {
	return &LocalProvider{Store: s}
}

type localIdentity struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

func identityPath(email string) string {
	return "identities/" + strings.ToLower(email)
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	if !emailPattern.MatchString(email) {
		return nil, NewError(CodeInvalidEmail)
	}
	if len(password) < minPasswordLen {
		return nil, NewError(CodeWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := &localIdentity{
		UID:          uuid.NewString(),
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	// The existence check and the write run in one transaction so two
	// concurrent signups for the same email cannot both win.
	err = p.Store.Txn(ctx, identityPath(email), func(current store.Document) (store.Document, error) {
		if current != nil {
			return nil, NewError(CodeEmailAlreadyInUse)
		}
		return store.Encode(id)
	})
	if err != nil {
		return nil, err
	}

	return &Identity{UID: id.UID, Email: id.Email}, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	if !emailPattern.MatchString(email) {
		return nil, NewError(CodeInvalidEmail)
	}

	doc, err := p.Store.Get(ctx, identityPath(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, NewError(CodeUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	var id localIdentity
	if err := store.Decode(doc, &id); err != nil {
		return nil, err
	}
	if id.Disabled {
		return nil, NewError(CodeUserDisabled)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)); err != nil {
		return nil, NewError(CodeWrongPassword)
	}

	return &Identity{UID: id.UID, Email: id.Email}, nil
}
