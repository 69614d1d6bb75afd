package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-system/models"
	"marketplace-system/store"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrPostNotFound  = errors.New("post not found")

	// ErrOrderFinalized means the order already left pending; approved and
	// rejected are terminal.
	ErrOrderFinalized = errors.New("order has already been processed")
)

// OrderService creates buy requests and runs the admin approval workflow.
type OrderService struct {
	Store store.Store
}

func NewOrderService(s store.Store) *OrderService {
	return &OrderService{Store: s}
}

// OrderWithID pairs an order with its document id for listings.
type OrderWithID struct {
	ID string `json:"id"`
	models.Order
}

// PostOrders groups the orders placed against one post, newest first.
type PostOrders struct {
	PostID    string        `json:"postId"`
	PostTitle string        `json:"postTitle"`
	PostPrice string        `json:"postPrice,omitempty"`
	PostImage string        `json:"postImage,omitempty"`
	Orders    []OrderWithID `json:"orders"`
	LatestAt  time.Time     `json:"latestAt"`
}

// OrderDetail is the admin detail view: the order plus buyer and seller
// contact info.
type OrderDetail struct {
	ID     string              `json:"id"`
	Order  models.Order        `json:"order"`
	Buyer  models.OrderContact `json:"buyer"`
	Seller models.OrderContact `json:"seller"`
}

// Create places a pending buy request for a post, denormalizing the post
// fields the admin list needs.
func (s *OrderService) Create(ctx context.Context, buyerID, postID string) (string, error) {
	doc, err := s.Store.Get(ctx, models.PostPath(postID))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrPostNotFound
	}
	if err != nil {
		return "", err
	}
	var post models.Post
	if err := store.Decode(doc, &post); err != nil {
		return "", err
	}

	order := models.Order{
		BuyerID:   buyerID,
		SellerID:  post.AuthorID,
		PostID:    postID,
		PostTitle: post.Title,
		PostPrice: post.Price,
		PostImage: post.ImageURL,
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now(),
	}
	orderDoc, err := store.Encode(order)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := s.Store.Set(ctx, models.OrderPath(id), orderDoc); err != nil {
		return "", err
	}
	logrus.Infof("order %s created: buyer %s, post %s", id, buyerID, postID)
	return id, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	doc, err := s.Store.Get(ctx, models.OrderPath(orderID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := store.Decode(doc, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Detail returns the order together with buyer and seller contact info. A
// missing party record leaves its contact empty rather than failing the
// view.
func (s *OrderService) Detail(ctx context.Context, orderID string) (*OrderDetail, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		ID:     orderID,
		Order:  *order,
		Buyer:  s.contact(ctx, order.BuyerID),
		Seller: s.contact(ctx, order.SellerID),
	}, nil
}

func (s *OrderService) contact(ctx context.Context, userID string) models.OrderContact {
	doc, err := s.Store.Get(ctx, models.UserPath(userID))
	if err != nil {
		return models.OrderContact{}
	}
	var rec models.UserRecord
	if err := store.Decode(doc, &rec); err != nil {
		return models.OrderContact{}
	}
	return models.OrderContact{Name: rec.Name, Phone: rec.Phone}
}

// ListGrouped returns all orders matching the status filter ("" or "all"
// for everything), grouped by post and sorted newest first, the way the
// admin orders page renders them.
func (s *OrderService) ListGrouped(ctx context.Context, statusFilter string) ([]PostOrders, error) {
	docs, err := s.Store.List(ctx, "orders/")
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*PostOrders)
	for path, doc := range docs {
		var order models.Order
		if err := store.Decode(doc, &order); err != nil {
			return nil, err
		}
		if statusFilter != "" && statusFilter != "all" && order.Status != statusFilter {
			continue
		}

		g, ok := groups[order.PostID]
		if !ok {
			g = &PostOrders{
				PostID:    order.PostID,
				PostTitle: order.PostTitle,
				PostPrice: order.PostPrice,
				PostImage: order.PostImage,
			}
			groups[order.PostID] = g
		}
		g.Orders = append(g.Orders, OrderWithID{
			ID:    strings.TrimPrefix(path, "orders/"),
			Order: order,
		})
		if order.CreatedAt.After(g.LatestAt) {
			g.LatestAt = order.CreatedAt
		}
	}

	out := make([]PostOrders, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Orders, func(i, j int) bool {
			return g.Orders[i].CreatedAt.After(g.Orders[j].CreatedAt)
		})
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LatestAt.After(out[j].LatestAt)
	})
	return out, nil
}

// Approve moves a pending order to approved, stamping who processed it and
// when.
func (s *OrderService) Approve(ctx context.Context, orderID, adminID string) error {
	return s.process(ctx, orderID, adminID, models.OrderStatusApproved)
}

// Reject moves a pending order to rejected.
func (s *OrderService) Reject(ctx context.Context, orderID, adminID string) error {
	return s.process(ctx, orderID, adminID, models.OrderStatusRejected)
}

func (s *OrderService) process(ctx context.Context, orderID, adminID, status string) error {
	err := s.Store.Txn(ctx, models.OrderPath(orderID), func(current store.Document) (store.Document, error) {
		if current == nil {
			return nil, ErrOrderNotFound
		}
		var order models.Order
		if err := store.Decode(current, &order); err != nil {
			return nil, err
		}
		if order.Status != models.OrderStatusPending {
			return nil, ErrOrderFinalized
		}
		now := time.Now()
		order.Status = status
		order.ProcessedAt = &now
		order.ProcessedBy = adminID
		return store.Encode(order)
	})
	if err != nil {
		return err
	}
	logrus.Infof("order %s %s by %s", orderID, status, adminID)
	return nil
}
