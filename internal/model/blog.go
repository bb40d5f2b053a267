package model

import "time"

// BlogSummary is the list projection of a blog file.
type BlogSummary struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Preview    string    `json:"preview"`
	FileName   string    `json:"fileName"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// BlogPost is a single blog file with its full, unmodified content.
// HTML is only filled when a rendered copy was requested.
type BlogPost struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	FileName   string    `json:"fileName"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	HTML       string    `json:"html,omitempty"`
}
