package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"marketplace-system/models"
	"marketplace-system/store"
)

var (
	// ErrUserNotFound means the user record vanished between lookup and
	// write. Callers log it and move on; nothing here is fatal.
	ErrUserNotFound = errors.New("user record not found")

	// ErrNegativeDelta rejects point removals; this ledger only adds.
	ErrNegativeDelta = errors.New("point delta must be non-negative")
)

// PointsLedger applies point awards to user records. Each award and its
// promotion check run inside one store transaction, so concurrent awards for
// the same user cannot lose increments and promotions still advance a single
// tier per award.
type PointsLedger struct {
	Store  store.Store
	Engine *PromotionEngine
}

func NewPointsLedger(s store.Store, engine *PromotionEngine) *PointsLedger {
	return &PointsLedger{Store: s, Engine: engine}
}

// AddPoints adds delta points to the user and promotes the rank if the new
// total crosses the next threshold. A zero delta verifies the record exists
// and writes nothing.
func (l *PointsLedger) AddPoints(ctx context.Context, userID string, delta int64) error {
	if delta < 0 {
		return ErrNegativeDelta
	}
	if delta == 0 {
		if _, err := l.Store.Get(ctx, models.UserPath(userID)); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	}

	return l.Store.Txn(ctx, models.UserPath(userID), func(current store.Document) (store.Document, error) {
		if current == nil {
			return nil, ErrUserNotFound
		}
		var rec models.UserRecord
		if err := store.Decode(current, &rec); err != nil {
			return nil, err
		}

		rec.Points += delta
		if newRank := l.Engine.Evaluate(rec.Points, rec.Rank); newRank != rec.Rank {
			now := time.Now()
			rec.Rank = newRank
			rec.LastPromotion = &now
			logrus.Infof("user %s promoted to rank %d (%d points)", userID, newRank, rec.Points)
		}

		return store.Encode(rec)
	})
}
