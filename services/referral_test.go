package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/models"
	"marketplace-system/store"
)

func newTestReferrals(t *testing.T) (*ReferralService, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore()
	ledger := NewPointsLedger(s, NewPromotionEngine(models.RankThresholds))
	return NewReferralService(s, ledger), s
}

func TestGenerateCodeFormat(t *testing.T) {
	refs, _ := newTestReferrals(t)

	code, err := refs.GenerateCode(context.Background())
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), code)
}

func TestRegisterThenResolve(t *testing.T) {
	refs, _ := newTestReferrals(t)
	ctx := context.Background()

	code, err := refs.GenerateCode(ctx)
	require.NoError(t, err)
	require.NoError(t, refs.Register(ctx, code, "u1"))

	owner, err := refs.Resolve(ctx, code)
	require.NoError(t, err)
	require.Equal(t, "u1", owner)
}

func TestResolveUnknownCode(t *testing.T) {
	refs, _ := newTestReferrals(t)

	_, err := refs.Resolve(context.Background(), "NOSUCHCD")
	require.ErrorIs(t, err, ErrUnknownCode)
}

func TestGenerateCodeRetriesOnCollision(t *testing.T) {
	refs, _ := newTestReferrals(t)
	ctx := context.Background()

	require.NoError(t, refs.Register(ctx, "TAKEN123", "u1"))

	codes := []string{"TAKEN123", "FRESH456"}
	refs.newCode = func() string {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code
	}

	code, err := refs.GenerateCode(ctx)
	require.NoError(t, err)
	require.Equal(t, "FRESH456", code)

	// The taken code still resolves to its original owner.
	owner, err := refs.Resolve(ctx, "TAKEN123")
	require.NoError(t, err)
	require.Equal(t, "u1", owner)
}

func TestGenerateCodeGivesUpEventually(t *testing.T) {
	refs, _ := newTestReferrals(t)
	ctx := context.Background()

	require.NoError(t, refs.Register(ctx, "TAKEN123", "u1"))
	refs.newCode = func() string { return "TAKEN123" }

	_, err := refs.GenerateCode(ctx)
	require.Error(t, err)
}

func TestProcessReferralAwardsReferrer(t *testing.T) {
	refs, s := newTestReferrals(t)
	ctx := context.Background()

	seedUser(t, s, "referrer", models.UserRecord{Name: "Alice", ReferralCode: "ALICE123"})
	require.NoError(t, refs.Register(ctx, "ALICE123", "referrer"))

	require.NoError(t, refs.ProcessReferral(ctx, "ALICE123", "newbie", "Bob", "bob@example.com"))

	rec := getUser(t, s, "referrer")
	require.Equal(t, int64(models.ReferralRewardPoints), rec.Points)
	require.Equal(t, 0, rec.Rank) // 10 < 100, no promotion

	edges, err := refs.ListEdges(ctx, "referrer")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, "Bob", edges["newbie"].Name)
	require.Equal(t, 1, edges["newbie"].Level)
}

func TestProcessReferralUnknownCodeIsSilentlySkipped(t *testing.T) {
	refs, s := newTestReferrals(t)
	ctx := context.Background()

	require.NoError(t, refs.ProcessReferral(ctx, "NOSUCHCD", "newbie", "Bob", "bob@example.com"))

	// No edges anywhere, no queued awards.
	docs, err := s.List(ctx, "userReferrals/")
	require.NoError(t, err)
	require.Empty(t, docs)
	pending, err := s.List(ctx, models.PendingAwardPrefix)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestProcessReferralQueuesAwardWhenLedgerFails(t *testing.T) {
	refs, s := newTestReferrals(t)
	ctx := context.Background()

	// Code index points at a referrer whose user record is gone, so the
	// award fails and must land in the reconciliation queue.
	require.NoError(t, refs.Register(ctx, "GHOST000", "ghost"))

	require.NoError(t, refs.ProcessReferral(ctx, "GHOST000", "newbie", "Bob", "bob@example.com"))

	pending, err := s.List(ctx, models.PendingAwardPrefix)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	for _, doc := range pending {
		var award models.PendingAward
		require.NoError(t, store.Decode(doc, &award))
		require.Equal(t, "ghost", award.UserID)
		require.Equal(t, int64(models.ReferralRewardPoints), award.Points)
	}
}
