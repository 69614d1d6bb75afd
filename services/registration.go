package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"marketplace-system/auth"
	"marketplace-system/models"
	"marketplace-system/store"
)

// ErrMissingFields rejects a registration without name, email or password.
var ErrMissingFields = errors.New("name, email and password are required")

// RegisterInput carries the signup form fields. ReferralCode is optional and
// stored as given; it is only validated against the index when the referral
// is processed.
type RegisterInput struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	Password     string
	ReferralCode string
}

// RegistrationService orchestrates account creation: identity, referral
// code, user record, code index, and the referrer's reward.
//
// The steps are not transactional as a group; the store has no cross-path
// transactions. If persistence fails after the identity was created, the
// orphaned identity is reported in the returned error and left for manual
// cleanup.
type RegistrationService struct {
	Store     store.Store
	Provider  auth.Provider
	Referrals *ReferralService
}

func NewRegistrationService(s store.Store, provider auth.Provider, referrals *ReferralService) *RegistrationService {
	return &RegistrationService{Store: s, Provider: provider, Referrals: referrals}
}

// Register creates the account and returns the new user id. Provider
// failures propagate verbatim so the caller can present the matching
// message. Referral bookkeeping failures never fail the signup.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return "", ErrMissingFields
	}

	ident, err := s.Provider.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		return "", err
	}

	code, err := s.Referrals.GenerateCode(ctx)
	if err != nil {
		return "", fmt.Errorf("registration left orphaned identity %s: %w", ident.UID, err)
	}

	// Index first: the code must resolve by the time the user record is
	// visible with it.
	if err := s.Referrals.Register(ctx, code, ident.UID); err != nil {
		return "", fmt.Errorf("registration left orphaned identity %s: %w", ident.UID, err)
	}

	rec := models.UserRecord{
		Name:         in.Name,
		Email:        ident.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Points:       0,
		Rank:         0,
		ReferralCode: code,
		ReferredBy:   in.ReferralCode,
		JoinDate:     time.Now(),
	}
	doc, err := store.Encode(rec)
	if err != nil {
		return "", err
	}
	if err := s.Store.Set(ctx, models.UserPath(ident.UID), doc); err != nil {
		return "", fmt.Errorf("registration left orphaned identity %s: %w", ident.UID, err)
	}

	if in.ReferralCode != "" {
		if err := s.Referrals.ProcessReferral(ctx, in.ReferralCode, ident.UID, in.Name, ident.Email); err != nil {
			// The account exists and is usable; only the referrer's
			// bookkeeping is lost.
			logrus.Warnf("referral processing for new user %s failed: %v", ident.UID, err)
		}
	}

	logrus.Infof("registered user %s (code %s)", ident.UID, code)
	return ident.UID, nil
}
