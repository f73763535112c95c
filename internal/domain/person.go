package domain

import "time"

// Person is an addressable actor, local or remote.
type Person struct {
	ID        int64     `json:"id"`
	GUID      string    `json:"guid"`
	Handle    string    `json:"handle"`
	OwnerID   *int64    `json:"ownerID,omitempty"`
	CreatedAt time.Time `json:"cdate"`
}

// IsLocal reports whether the person is controlled by a user of this node.
// Remote persons are read-only cached copies and carry no owner.
func (p Person) IsLocal() bool {
	return p.OwnerID != nil
}

// User is a local person with login capability.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	PersonID int64  `json:"personID"`
	Person   Person `json:"person"`
}
