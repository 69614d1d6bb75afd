package workers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"marketplace-system/models"
	"marketplace-system/store"
)

// PromotionWatcher subscribes to user record changes and announces rank
// transitions. It only compares against ranks it has already seen, so the
// first event for a user establishes the baseline.
type PromotionWatcher struct {
	Store store.Store

	mu    sync.Mutex
	ranks map[string]int
}

func NewPromotionWatcher(s store.Store) *PromotionWatcher {
	return &PromotionWatcher{Store: s, ranks: make(map[string]int)}
}

// Start begins watching and returns a cancel function.
func (w *PromotionWatcher) Start() (func(), error) {
	return w.Store.Subscribe("users/", func(path string, doc store.Document) {
		if doc == nil {
			return
		}
		var rec models.UserRecord
		if err := store.Decode(doc, &rec); err != nil {
			return
		}

		w.mu.Lock()
		prev, seen := w.ranks[path]
		w.ranks[path] = rec.Rank
		w.mu.Unlock()

		if seen && rec.Rank > prev {
			logrus.Infof("rank up: %s is now rank %d with %d points", path, rec.Rank, rec.Points)
		}
	})
}
