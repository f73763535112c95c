package usecase

import (
	"context"
	"errors"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

type mockVisibilityRepo struct {
	opts  domain.QueryOptions
	calls int
	posts []domain.Post
	post  *domain.Post
	err   error
}

func (m *mockVisibilityRepo) VisiblePosts(ctx context.Context, viewer domain.User, opts domain.QueryOptions) ([]domain.Post, error) {
	m.calls++
	m.opts = opts
	return m.posts, m.err
}

func (m *mockVisibilityRepo) FindVisiblePost(ctx context.Context, viewer domain.User, id int64) (*domain.Post, error) {
	m.calls++
	return m.post, m.err
}

func (m *mockVisibilityRepo) PostsFrom(ctx context.Context, viewer domain.User, personID int64, opts domain.QueryOptions) ([]domain.Post, error) {
	m.calls++
	m.opts = opts
	return m.posts, m.err
}

type mockPersonRepo struct {
	people  map[int64]domain.Person
	created domain.Person
}

func (m *mockPersonRepo) Create(ctx context.Context, person domain.Person) (domain.Person, error) {
	person.ID = 100
	m.created = person
	return person, nil
}

func (m *mockPersonRepo) Get(ctx context.Context, id int64) (domain.Person, error) {
	p, ok := m.people[id]
	if !ok {
		return domain.Person{}, domain.NotFoundError{Resource: "person"}
	}
	return p, nil
}

type mockContactRepo struct {
	contact  *domain.Contact
	created  bool
	moved    [2]int64
	err      error
	lastUser domain.User
}

func (m *mockContactRepo) ContactFor(ctx context.Context, viewer domain.User, personID int64) (*domain.Contact, error) {
	m.lastUser = viewer
	return m.contact, m.err
}

func (m *mockContactRepo) AspectsWithPerson(ctx context.Context, viewer domain.User, personID int64) ([]domain.Aspect, error) {
	return nil, m.err
}

func (m *mockContactRepo) PeopleInAspects(ctx context.Context, viewer domain.User, aspectIDs []int64, filter domain.PeopleFilter) ([]domain.Person, error) {
	return nil, m.err
}

func (m *mockContactRepo) Create(ctx context.Context, viewer domain.User, personID int64, pending bool, aspectIDs []int64) (domain.Contact, error) {
	m.created = true
	return domain.Contact{ID: 1, UserID: viewer.ID, PersonID: personID, Pending: pending, AspectIDs: aspectIDs}, m.err
}

func (m *mockContactRepo) Accept(ctx context.Context, viewer domain.User, personID int64) error {
	return m.err
}

func (m *mockContactRepo) AddToAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	return m.err
}

func (m *mockContactRepo) RemoveFromAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	return m.err
}

func (m *mockContactRepo) Move(ctx context.Context, viewer domain.User, personID, fromAspectID, toAspectID int64) error {
	m.moved = [2]int64{fromAspectID, toAspectID}
	return m.err
}

func (m *mockContactRepo) Connect(ctx context.Context, a domain.User, aspectA int64, b domain.User, aspectB int64) error {
	return m.err
}

type mockAspectRepo struct {
	name string
}

func (m *mockAspectRepo) Create(ctx context.Context, userID int64, name string) (domain.Aspect, error) {
	m.name = name
	return domain.Aspect{ID: 1, UserID: userID, Name: name}, nil
}

func (m *mockAspectRepo) List(ctx context.Context, userID int64) ([]domain.Aspect, error) {
	return []domain.Aspect{{ID: 1, UserID: userID, Name: domain.DefaultAspectName}}, nil
}

type mockPostRepo struct {
	input domain.NewPost
	post  domain.Post
	err   error
}

func (m *mockPostRepo) Create(ctx context.Context, author domain.User, input domain.NewPost) (domain.Post, error) {
	m.input = input
	post := m.post
	post.AuthorID = author.PersonID
	post.Pending = input.Pending
	return post, m.err
}

func (m *mockPostRepo) Edit(ctx context.Context, author domain.User, id int64, text string) (domain.Post, error) {
	return domain.Post{ID: id, Text: text}, m.err
}

func (m *mockPostRepo) Publish(ctx context.Context, author domain.User, id int64) (domain.Post, error) {
	return domain.Post{ID: id, AuthorID: author.PersonID}, m.err
}

func (m *mockPostRepo) SetHidden(ctx context.Context, author domain.User, postID, aspectID int64, hidden bool) error {
	return m.err
}

type mockPublisher struct {
	events []domain.Event
	fail   bool
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event domain.Event) error {
	if m.fail {
		return errors.New("redis down")
	}
	m.events = append(m.events, event)
	return nil
}

type mockUserRepo struct {
	username string
	handle   string
	deleted  int64
}

func (m *mockUserRepo) Register(ctx context.Context, username, handle string) (domain.User, error) {
	m.username = username
	m.handle = handle
	return domain.User{ID: 1, Username: username, PersonID: 1, Person: domain.Person{ID: 1, Handle: handle}}, nil
}

func (m *mockUserRepo) Get(ctx context.Context, id int64) (domain.User, error) {
	return domain.User{ID: id}, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return domain.User{ID: 1, Username: username}, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	m.deleted = id
	return nil
}
