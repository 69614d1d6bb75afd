package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/models"
	"marketplace-system/services"
	"marketplace-system/store"
)

func newTestWorker(t *testing.T) (*ReconcileWorker, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore()
	ledger := services.NewPointsLedger(s, services.NewPromotionEngine(models.RankThresholds))
	return NewReconcileWorker(s, ledger), s
}

func queueAward(t *testing.T, s *store.MemStore, id string, award models.PendingAward) {
	t.Helper()
	doc, err := store.Encode(award)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), models.PendingAwardPath(id), doc))
}

func TestSweepAppliesQueuedAwardOnce(t *testing.T) {
	w, s := newTestWorker(t)
	ctx := context.Background()

	userDoc, err := store.Encode(models.UserRecord{Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, models.UserPath("u1"), userDoc))

	queueAward(t, s, "a1", models.PendingAward{UserID: "u1", Points: 10, Reason: "referral:u2"})

	w.Sweep(ctx)

	doc, err := s.Get(ctx, models.UserPath("u1"))
	require.NoError(t, err)
	var rec models.UserRecord
	require.NoError(t, store.Decode(doc, &rec))
	require.Equal(t, int64(10), rec.Points)

	pending, err := s.List(ctx, models.PendingAwardPrefix)
	require.NoError(t, err)
	require.Empty(t, pending)

	// A second sweep finds nothing to apply.
	w.Sweep(ctx)
	doc, err = s.Get(ctx, models.UserPath("u1"))
	require.NoError(t, err)
	require.NoError(t, store.Decode(doc, &rec))
	require.Equal(t, int64(10), rec.Points)
}

func TestSweepDropsAwardForMissingUser(t *testing.T) {
	w, s := newTestWorker(t)
	ctx := context.Background()

	queueAward(t, s, "a1", models.PendingAward{UserID: "ghost", Points: 10, Reason: "referral:u2"})

	w.Sweep(ctx)

	pending, err := s.List(ctx, models.PendingAwardPrefix)
	require.NoError(t, err)
	require.Empty(t, pending)
}
