package models

// Document paths. The layout mirrors the relations in the data model: one
// record per user, a code index for referrer lookup, a per-referrer edge
// collection, and flat order/post collections.

func UserPath(userID string) string { return "users/" + userID }

func ReferralCodePath(code string) string { return "referralCodes/" + code }

func ReferralEdgePath(referrerID, referredID string) string {
	return "userReferrals/" + referrerID + "/" + referredID
}

func ReferralEdgesPrefix(referrerID string) string { return "userReferrals/" + referrerID + "/" }

func OrderPath(orderID string) string { return "orders/" + orderID }

func PostPath(postID string) string { return "posts/" + postID }
