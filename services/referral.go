package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-system/models"
	"marketplace-system/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 8

	// maxCodeAttempts bounds collision retries during code generation. With
	// 36^8 codes a second attempt is already rare.
	maxCodeAttempts = 5
)

// ErrUnknownCode means a referral code has no owner in the index.
var ErrUnknownCode = errors.New("unknown referral code")

// ReferralService owns the code index at referralCodes/<code> and the edge
// collection at userReferrals/<referrer>/<referred>.
type ReferralService struct {
	Store  store.Store
	Ledger *PointsLedger

	newCode func() string
}

func NewReferralService(s store.Store, ledger *PointsLedger) *ReferralService {
	return &ReferralService{Store: s, Ledger: ledger, newCode: randomCode}
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// GenerateCode produces a referral code that is not yet in the index. A code
// is only handed out after an existence check, so a collision can never
// silently overwrite another user's mapping.
func (s *ReferralService) GenerateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.newCode()
		_, err := s.Store.Get(ctx, models.ReferralCodePath(code))
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		logrus.Warnf("referral code collision on %s, retrying", code)
	}
	return "", fmt.Errorf("no unused referral code after %d attempts", maxCodeAttempts)
}

// Register creates the code→owner index entry. Callers must do this before
// the owning user record becomes visible with the code, so the code never
// resolves to nothing.
func (s *ReferralService) Register(ctx context.Context, code, ownerID string) error {
	return s.Store.Set(ctx, models.ReferralCodePath(code), store.Document{
		"userId": ownerID,
	})
}

// Resolve returns the owner of a referral code, or ErrUnknownCode.
func (s *ReferralService) Resolve(ctx context.Context, code string) (string, error) {
	doc, err := s.Store.Get(ctx, models.ReferralCodePath(code))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnknownCode
	}
	if err != nil {
		return "", err
	}
	ownerID, _ := doc["userId"].(string)
	if ownerID == "" {
		return "", ErrUnknownCode
	}
	return ownerID, nil
}

// ProcessReferral links a fresh signup to its referrer: it records the
// referral edge and awards the referrer their points. An unknown code is
// skipped without error. A failed award is queued for reconciliation instead
// of interrupting the signup.
func (s *ReferralService) ProcessReferral(ctx context.Context, code, newUserID, name, email string) error {
	referrerID, err := s.Resolve(ctx, code)
	if errors.Is(err, ErrUnknownCode) {
		logrus.Debugf("referral code %s does not resolve, skipping", code)
		return nil
	}
	if err != nil {
		return err
	}

	edge, err := store.Encode(models.ReferralEdge{
		Name:     name,
		Email:    email,
		JoinDate: time.Now(),
		Level:    1,
	})
	if err != nil {
		return err
	}
	if err := s.Store.Set(ctx, models.ReferralEdgePath(referrerID, newUserID), edge); err != nil {
		return err
	}

	if err := s.Ledger.AddPoints(ctx, referrerID, models.ReferralRewardPoints); err != nil {
		logrus.Warnf("referral award for %s failed (%v), queueing for reconciliation", referrerID, err)
		return s.queueAward(ctx, referrerID, models.ReferralRewardPoints, "referral:"+newUserID)
	}
	return nil
}

// ListEdges returns the referral edges for a referrer, keyed by referred
// user id.
func (s *ReferralService) ListEdges(ctx context.Context, referrerID string) (map[string]models.ReferralEdge, error) {
	prefix := models.ReferralEdgesPrefix(referrerID)
	docs, err := s.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.ReferralEdge, len(docs))
	for path, doc := range docs {
		var edge models.ReferralEdge
		if err := store.Decode(doc, &edge); err != nil {
			return nil, err
		}
		out[path[len(prefix):]] = edge
	}
	return out, nil
}

func (s *ReferralService) queueAward(ctx context.Context, userID string, points int64, reason string) error {
	award, err := store.Encode(models.PendingAward{
		UserID:    userID,
		Points:    points,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, models.PendingAwardPath(uuid.NewString()), award)
}
