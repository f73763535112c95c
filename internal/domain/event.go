package domain

import "time"

const (
	EventPostCreated      = "post.created"
	EventPostPublished    = "post.published"
	EventVisibilityHidden = "visibility.hidden"
)

// Event is a post lifecycle notification published on the channel named by Type.
type Event struct {
	Type      string    `json:"type"`
	PostID    int64     `json:"postID"`
	AuthorID  int64     `json:"authorID"`
	AspectID  int64     `json:"aspectID,omitempty"`
	Hidden    bool      `json:"hidden,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
