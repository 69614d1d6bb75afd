package models

import "time"

// RankThresholds maps loyalty tiers to the points required for them: a user
// is eligible for rank r once Points reaches RankThresholds[r-1]. Rank 0 is
// the starting tier and has no threshold.
var RankThresholds = []int64{100, 300, 600, 1000, 1500}

// ReferralRewardPoints is awarded to the referrer for each signup made with
// their code.
const ReferralRewardPoints = 10

// UserRecord is the canonical per-user document at users/<uid>.
// Points never decreases and Rank only moves up, one tier at a time.
type UserRecord struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Address       string     `json:"address,omitempty"`
	Points        int64      `json:"points"`
	Rank          int        `json:"rank"`
	ReferralCode  string     `json:"referralCode"`
	ReferredBy    string     `json:"referredBy,omitempty"`
	JoinDate      time.Time  `json:"joinDate"`
	LastPromotion *time.Time `json:"lastPromotion,omitempty"`
	IsAdmin       bool       `json:"isAdmin"`
}

// ReferralEdge records one successful referral at
// userReferrals/<referrerId>/<referredId>. Write-once, never mutated.
type ReferralEdge struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinDate time.Time `json:"joinDate"`
	Level    int       `json:"level"`
}

// Session is the per-request identity context attached by the session
// middleware. Handlers read this instead of any ambient auth state.
type Session struct {
	UserID  string
	Name    string
	IsAdmin bool
}
