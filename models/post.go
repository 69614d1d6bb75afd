package models

import "time"

// Post is a product listing document at posts/<id>.
type Post struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       string    `json:"price,omitempty"`
	Location    string    `json:"location,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorPhone string    `json:"authorPhone,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
