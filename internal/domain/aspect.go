package domain

import "time"

// Aspect is a named, user-owned grouping of contacts and a sharing target for posts.
type Aspect struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"cdate"`
}

// Contact is a directed edge from a user to a person.
type Contact struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userID"`
	PersonID  int64   `json:"personID"`
	Pending   bool    `json:"pending"`
	Person    Person  `json:"person"`
	AspectIDs []int64 `json:"aspectIDs"`
}

// AspectMembership places a contact into an aspect of the contact's owner.
type AspectMembership struct {
	AspectID  int64 `json:"aspectID"`
	ContactID int64 `json:"contactID"`
}

// PeopleFilter restricts people listings by home node.
type PeopleFilter string

const (
	PeopleAll    PeopleFilter = ""
	PeopleLocal  PeopleFilter = "local"
	PeopleRemote PeopleFilter = "remote"
)

// ParsePeopleFilter accepts "", "all", "local" and "remote".
func ParsePeopleFilter(s string) (PeopleFilter, error) {
	switch s {
	case "", "all":
		return PeopleAll, nil
	case "local":
		return PeopleLocal, nil
	case "remote":
		return PeopleRemote, nil
	default:
		return PeopleAll, InvalidOptionError{Option: "type", Reason: "must be all, local or remote"}
	}
}
