package models

import "time"

// Order statuses. Pending is the only state that allows a transition;
// approved and rejected are terminal.
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// Order is a buy request document at orders/<id>. Post fields are
// denormalized at creation so the admin list renders without extra reads.
type Order struct {
	BuyerID     string     `json:"buyerId"`
	SellerID    string     `json:"sellerId"`
	PostID      string     `json:"postId"`
	PostTitle   string     `json:"postTitle"`
	PostPrice   string     `json:"postPrice,omitempty"`
	PostImage   string     `json:"postImage,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	ProcessedBy string     `json:"processedBy,omitempty"`
}

// OrderContact is the buyer/seller info shown on the order detail view.
type OrderContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}
