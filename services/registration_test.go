package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/auth"
	"marketplace-system/models"
	"marketplace-system/store"
)

func newTestRegistration(t *testing.T) (*RegistrationService, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore()
	ledger := NewPointsLedger(s, NewPromotionEngine(models.RankThresholds))
	referrals := NewReferralService(s, ledger)
	provider := auth.NewLocalProvider(s)
	return NewRegistrationService(s, provider, referrals), s
}

func TestRegisterWithoutReferralCode(t *testing.T) {
	reg, s := newTestRegistration(t)
	ctx := context.Background()

	userID, err := reg.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	rec := getUser(t, s, userID)
	require.Equal(t, "Alice", rec.Name)
	require.Equal(t, int64(0), rec.Points)
	require.Equal(t, 0, rec.Rank)
	require.Empty(t, rec.ReferredBy)
	require.Len(t, rec.ReferralCode, 8)

	// The generated code resolves straight back to its owner.
	owner, err := reg.Referrals.Resolve(ctx, rec.ReferralCode)
	require.NoError(t, err)
	require.Equal(t, userID, owner)
}

func TestRegisterWithReferralCode(t *testing.T) {
	reg, s := newTestRegistration(t)
	ctx := context.Background()

	aliceID, err := reg.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	aliceCode := getUser(t, s, aliceID).ReferralCode

	bobID, err := reg.Register(ctx, RegisterInput{
		Name:         "Bob",
		Email:        "bob@example.com",
		Password:     "secret123",
		ReferralCode: aliceCode,
	})
	require.NoError(t, err)

	bob := getUser(t, s, bobID)
	require.Equal(t, aliceCode, bob.ReferredBy)

	alice := getUser(t, s, aliceID)
	require.Equal(t, int64(models.ReferralRewardPoints), alice.Points)
	require.Equal(t, 0, alice.Rank) // 10 < 100

	edges, err := reg.Referrals.ListEdges(ctx, aliceID)
	require.NoError(t, err)
	require.Contains(t, edges, bobID)
	require.Equal(t, "Bob", edges[bobID].Name)
}

func TestRegisterWithUnknownReferralCodeSucceeds(t *testing.T) {
	reg, s := newTestRegistration(t)
	ctx := context.Background()

	userID, err := reg.Register(ctx, RegisterInput{
		Name:         "Bob",
		Email:        "bob@example.com",
		Password:     "secret123",
		ReferralCode: "NOSUCHCD",
	})
	require.NoError(t, err)

	rec := getUser(t, s, userID)
	require.Equal(t, "NOSUCHCD", rec.ReferredBy) // stored as given

	// But no edge and no award anywhere.
	edges, err := s.List(ctx, "userReferrals/")
	require.NoError(t, err)
	require.Empty(t, edges)
}

func TestRegisterMissingFields(t *testing.T) {
	reg, _ := newTestRegistration(t)

	_, err := reg.Register(context.Background(), RegisterInput{Email: "x@example.com"})
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestRegisterPropagatesProviderErrors(t *testing.T) {
	reg, _ := newTestRegistration(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, auth.CodeWeakPassword, authErr.Code)

	_, err = reg.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = reg.Register(ctx, RegisterInput{
		Name:     "Alice Again",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, auth.CodeEmailAlreadyInUse, authErr.Code)
}

func TestRegisteredCodesAreUniquePerUser(t *testing.T) {
	reg, s := newTestRegistration(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		userID, err := reg.Register(ctx, RegisterInput{
			Name:     "User",
			Email:    email,
			Password: "secret123",
		})
		require.NoError(t, err)
		code := getUser(t, s, userID).ReferralCode
		require.False(t, seen[code])
		seen[code] = true
	}
}
