package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/store"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, code, authErr.Code)
}

func TestLocalProviderCreateAndAuthenticate(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())
	ctx := context.Background()

	created, err := p.CreateIdentity(ctx, "Alice@Example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, created.UID)
	require.Equal(t, "alice@example.com", created.Email)

	got, err := p.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, created.UID, got.UID)
}

func TestLocalProviderRejectsInvalidEmail(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())

	_, err := p.CreateIdentity(context.Background(), "not-an-email", "secret123")
	requireCode(t, err, CodeInvalidEmail)
}

func TestLocalProviderRejectsWeakPassword(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())

	_, err := p.CreateIdentity(context.Background(), "alice@example.com", "abc")
	requireCode(t, err, CodeWeakPassword)
}

func TestLocalProviderRejectsDuplicateEmail(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = p.CreateIdentity(ctx, "alice@example.com", "other456")
	requireCode(t, err, CodeEmailAlreadyInUse)
}

func TestLocalProviderWrongPassword(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = p.Authenticate(ctx, "alice@example.com", "wrong999")
	requireCode(t, err, CodeWrongPassword)
}

func TestLocalProviderUnknownUser(t *testing.T) {
	p := NewLocalProvider(store.NewMemStore())

	_, err := p.Authenticate(context.Background(), "ghost@example.com", "secret123")
	requireCode(t, err, CodeUserNotFound)
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t, "The password is incorrect", NewError(CodeWrongPassword).Message())
	// Unrecognized codes collapse to the generic retry message.
	require.Equal(t, NewError(CodeUnknown).Message(), NewError("something-new").Message())
}
