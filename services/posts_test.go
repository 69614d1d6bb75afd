package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-system/models"
	"marketplace-system/store"
)

func TestPostCreateFillsAuthorAndSlug(t *testing.T) {
	s := store.NewMemStore()
	posts := NewPostService(s)
	ctx := context.Background()

	seedUser(t, s, "seller1", models.UserRecord{Name: "Sara", Phone: "0200"})

	id, err := posts.Create(ctx, "seller1", PostInput{
		Title:       "Mountain Bike For Sale",
		Description: "Barely used",
		Price:       "250",
	})
	require.NoError(t, err)

	post, err := posts.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "seller1", post.AuthorID)
	require.Equal(t, "Sara", post.AuthorName)
	require.Equal(t, "0200", post.AuthorPhone)
	require.True(t, strings.HasPrefix(post.Slug, "mountain-bike-for-sale-"))
}

func TestPostCreateRequiresTitleAndDescription(t *testing.T) {
	s := store.NewMemStore()
	posts := NewPostService(s)
	seedUser(t, s, "seller1", models.UserRecord{Name: "Sara"})

	_, err := posts.Create(context.Background(), "seller1", PostInput{Title: "Bike"})
	require.ErrorIs(t, err, ErrMissingTitle)
}

func TestPostCreateUnknownAuthor(t *testing.T) {
	posts := NewPostService(store.NewMemStore())

	_, err := posts.Create(context.Background(), "ghost", PostInput{
		Title:       "Bike",
		Description: "Nice",
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestPostGetUnknown(t *testing.T) {
	posts := NewPostService(store.NewMemStore())

	_, err := posts.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostListReturnsAll(t *testing.T) {
	s := store.NewMemStore()
	posts := NewPostService(s)
	ctx := context.Background()

	seedUser(t, s, "seller1", models.UserRecord{Name: "Sara"})
	for _, title := range []string{"Bike", "Laptop", "Desk"} {
		_, err := posts.Create(ctx, "seller1", PostInput{Title: title, Description: "x"})
		require.NoError(t, err)
	}

	list, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
}
