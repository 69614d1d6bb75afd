package auth

import "context"

// Identity is an account held by the identity provider. The UID becomes the
// user record identifier.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Provider is the external authentication collaborator: it owns credentials
// and issues identities; everything else about a user lives in the document
// store.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
}
