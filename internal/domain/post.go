package domain

import "time"

// PostType is the concrete subtype tag of a post.
type PostType string

const (
	PostTypeStatusMessage PostType = "StatusMessage"
	PostTypePhoto         PostType = "Photo"
)

// Valid reports whether t is a known subtype.
func (t PostType) Valid() bool {
	switch t {
	case PostTypeStatusMessage, PostTypePhoto:
		return true
	}
	return false
}

// Post is a content item authored by one person.
type Post struct {
	ID        int64     `json:"id"`
	GUID      string    `json:"guid"`
	AuthorID  int64     `json:"authorID"`
	Type      PostType  `json:"type"`
	Text      string    `json:"text,omitempty"`
	Public    bool      `json:"public"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"cdate"`
	UpdatedAt time.Time `json:"mdate"`
}

// PostVisibility records that a post was shared into one of its author's aspects.
type PostVisibility struct {
	PostID   int64 `json:"postID"`
	AspectID int64 `json:"aspectID"`
	Hidden   bool  `json:"hidden"`
}

// NewPost is the authoring input for a post and its sharing targets.
// ToAll shares into every aspect of the author and ignores AspectIDs.
type NewPost struct {
	Type      PostType `json:"type"`
	Text      string   `json:"text"`
	Public    bool     `json:"public"`
	Pending   bool     `json:"pending"`
	AspectIDs []int64  `json:"aspectIDs"`
	ToAll     bool     `json:"toAll"`
}
