package models

import "time"

// PendingAward is a point award that could not be applied when it was earned
// (e.g. the referrer record read failed mid-registration). It sits under
// reconcile/awards/<id> until the reconciliation worker applies or drops it.
type PendingAward struct {
	UserID    string    `json:"userId"`
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
}

const PendingAwardPrefix = "reconcile/awards/"

func PendingAwardPath(id string) string { return PendingAwardPrefix + id }
