package workers

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"marketplace-system/models"
	"marketplace-system/services"
	"marketplace-system/store"
)

// maxAwardAttempts bounds retries for a queued award before it is dropped
// with a warning.
const maxAwardAttempts = 5

// ReconcileWorker periodically retries point awards that failed when they
// were earned. Entries live under reconcile/awards/ and are deleted once
// applied.
type ReconcileWorker struct {
	Store  store.Store
	Ledger *services.PointsLedger
}

func NewReconcileWorker(s store.Store, ledger *services.PointsLedger) *ReconcileWorker {
	return &ReconcileWorker{Store: s, Ledger: ledger}
}

// Start runs the sweep every minute until ctx is done.
func (w *ReconcileWorker) Start(ctx context.Context) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		logrus.Errorf("[Reconcile] scheduler init failed: %v", err)
		return
	}
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			w.Sweep(ctx)
		}),
	)
	if err != nil {
		logrus.Errorf("[Reconcile] job registration failed: %v", err)
		return
	}
	sched.Start()

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}

// Sweep applies every queued award once, dropping entries that keep
// failing.
func (w *ReconcileWorker) Sweep(ctx context.Context) {
	docs, err := w.Store.List(ctx, models.PendingAwardPrefix)
	if err != nil {
		logrus.Errorf("[Reconcile] listing pending awards failed: %v", err)
		return
	}

	for path, doc := range docs {
		var award models.PendingAward
		if err := store.Decode(doc, &award); err != nil {
			logrus.Warnf("[Reconcile] dropping unreadable award %s: %v", path, err)
			_ = w.Store.Delete(ctx, path)
			continue
		}

		err := w.Ledger.AddPoints(ctx, award.UserID, award.Points)
		if err == nil {
			logrus.Infof("[Reconcile] applied %d points to %s (%s)", award.Points, award.UserID, award.Reason)
			_ = w.Store.Delete(ctx, path)
			continue
		}

		if errors.Is(err, services.ErrUserNotFound) || award.Attempts+1 >= maxAwardAttempts {
			logrus.Warnf("[Reconcile] dropping award for %s after %d attempts: %v", award.UserID, award.Attempts+1, err)
			_ = w.Store.Delete(ctx, path)
			continue
		}

		if err := w.Store.Update(ctx, path, store.Document{"attempts": award.Attempts + 1}); err != nil {
			logrus.Warnf("[Reconcile] updating attempts on %s failed: %v", path, err)
		}
	}
}
