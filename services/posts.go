package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"marketplace-system/models"
	"marketplace-system/store"
)

var ErrMissingTitle = errors.New("post title and description are required")

// PostInput carries the new-post form fields. The image, if any, is uploaded
// by the handler and passed in as a URL.
type PostInput struct {
	Title       string
	Description string
	Price       string
	Location    string
	Phone       string
	ImageURL    string
}

// PostWithID pairs a post with its document id for listings.
type PostWithID struct {
	ID string `json:"id"`
	models.Post
}

// PostService manages product listings.
type PostService struct {
	Store store.Store
}

func NewPostService(s store.Store) *PostService {
	return &PostService{Store: s}
}

// Create persists a new listing under the author's name and contact info.
func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (string, error) {
	if in.Title == "" || in.Description == "" {
		return "", ErrMissingTitle
	}

	doc, err := s.Store.Get(ctx, models.UserPath(authorID))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	var author models.UserRecord
	if err := store.Decode(doc, &author); err != nil {
		return "", err
	}

	id := uuid.NewString()
	post := models.Post{
		Title:       in.Title,
		Slug:        slug.Make(in.Title) + "-" + id[:8],
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Phone:       in.Phone,
		AuthorID:    authorID,
		AuthorName:  author.Name,
		AuthorPhone: author.Phone,
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now(),
	}
	postDoc, err := store.Encode(post)
	if err != nil {
		return "", err
	}
	if err := s.Store.Set(ctx, models.PostPath(id), postDoc); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns one listing.
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	doc, err := s.Store.Get(ctx, models.PostPath(postID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := store.Decode(doc, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns all listings, newest first.
func (s *PostService) List(ctx context.Context) ([]PostWithID, error) {
	docs, err := s.Store.List(ctx, "posts/")
	if err != nil {
		return nil, err
	}
	out := make([]PostWithID, 0, len(docs))
	for path, doc := range docs {
		var post models.Post
		if err := store.Decode(doc, &post); err != nil {
			return nil, err
		}
		out = append(out, PostWithID{ID: strings.TrimPrefix(path, "posts/"), Post: post})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
