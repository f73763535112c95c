package usecase

import (
	"context"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

// UserRepository defines persistence for local accounts.
type UserRepository interface {
	Register(ctx context.Context, username, handle string) (domain.User, error)
	Get(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Delete(ctx context.Context, id int64) error
}

// PersonRepository defines lookup for local and remote identities.
type PersonRepository interface {
	Create(ctx context.Context, person domain.Person) (domain.Person, error)
	Get(ctx context.Context, id int64) (domain.Person, error)
}

// AspectRepository defines persistence for a user's aspects.
type AspectRepository interface {
	Create(ctx context.Context, userID int64, name string) (domain.Aspect, error)
	List(ctx context.Context, userID int64) ([]domain.Aspect, error)
}

// ContactRepository defines the relationship graph operations.
type ContactRepository interface {
	ContactFor(ctx context.Context, viewer domain.User, personID int64) (*domain.Contact, error)
	AspectsWithPerson(ctx context.Context, viewer domain.User, personID int64) ([]domain.Aspect, error)
	PeopleInAspects(ctx context.Context, viewer domain.User, aspectIDs []int64, filter domain.PeopleFilter) ([]domain.Person, error)
	Create(ctx context.Context, viewer domain.User, personID int64, pending bool, aspectIDs []int64) (domain.Contact, error)
	Accept(ctx context.Context, viewer domain.User, personID int64) error
	AddToAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error
	RemoveFromAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error
	Move(ctx context.Context, viewer domain.User, personID, fromAspectID, toAspectID int64) error
	Connect(ctx context.Context, a domain.User, aspectA int64, b domain.User, aspectB int64) error
}

// PostRepository defines authoring operations on posts.
type PostRepository interface {
	Create(ctx context.Context, author domain.User, input domain.NewPost) (domain.Post, error)
	Edit(ctx context.Context, author domain.User, id int64, text string) (domain.Post, error)
	Publish(ctx context.Context, author domain.User, id int64) (domain.Post, error)
	SetHidden(ctx context.Context, author domain.User, postID, aspectID int64, hidden bool) error
}

// VisibilityRepository evaluates visibility queries. Options arrive normalized.
type VisibilityRepository interface {
	VisiblePosts(ctx context.Context, viewer domain.User, opts domain.QueryOptions) ([]domain.Post, error)
	FindVisiblePost(ctx context.Context, viewer domain.User, id int64) (*domain.Post, error)
	PostsFrom(ctx context.Context, viewer domain.User, personID int64, opts domain.QueryOptions) ([]domain.Post, error)
}

// EventPublisher fans out post lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event domain.Event) error
}
