package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/cache"
	"github.com/totegamma/concrnt-aspects/internal/infra/database"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

// fixture mirrors the usual three-user graph: bob is connected with alice
// and with eve through everyone's "generic" aspect; alice and eve are strangers.
type fixture struct {
	db         *gorm.DB
	users      *UserRepository
	persons    *PersonRepository
	aspects    *AspectRepository
	contacts   *ContactRepository
	posts      *PostRepository
	visibility *VisibilityRepository

	alice, bob, eve                       domain.User
	alicesAspect, bobsAspect, evesAspect domain.Aspect
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLite("file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	pc := cache.NewPersonCache(cache.NewLocalStore(time.Minute), time.Minute)

	f := &fixture{
		db:         db,
		users:      NewUserRepository(db, pc),
		persons:    NewPersonRepository(db, pc),
		aspects:    NewAspectRepository(db),
		contacts:   NewContactRepository(db),
		posts:      NewPostRepository(db),
		visibility: NewVisibilityRepository(db),
	}

	f.alice, f.alicesAspect = f.newUser(t, "alice")
	f.bob, f.bobsAspect = f.newUser(t, "bob")
	f.eve, f.evesAspect = f.newUser(t, "eve")

	f.connect(t, f.bob, f.bobsAspect, f.alice, f.alicesAspect)
	f.connect(t, f.bob, f.bobsAspect, f.eve, f.evesAspect)

	return f
}

func (f *fixture) newUser(t *testing.T, name string) (domain.User, domain.Aspect) {
	t.Helper()
	ctx := context.Background()

	user, err := f.users.Register(ctx, name, name+"@example.com")
	require.NoError(t, err)

	generic, err := f.aspects.FindByName(ctx, user.ID, domain.DefaultAspectName)
	require.NoError(t, err)

	return user, generic
}

func (f *fixture) newAspect(t *testing.T, owner domain.User, name string) domain.Aspect {
	t.Helper()
	aspect, err := f.aspects.Create(context.Background(), owner.ID, name)
	require.NoError(t, err)
	return aspect
}

func (f *fixture) connect(t *testing.T, a domain.User, aspectA domain.Aspect, b domain.User, aspectB domain.Aspect) {
	t.Helper()
	require.NoError(t, f.contacts.Connect(context.Background(), a, aspectA.ID, b, aspectB.ID))
}

func (f *fixture) post(t *testing.T, author domain.User, input domain.NewPost) domain.Post {
	t.Helper()
	if input.Type == "" {
		input.Type = domain.PostTypeStatusMessage
	}
	post, err := f.posts.Create(context.Background(), author, input)
	require.NoError(t, err)
	return post
}

func (f *fixture) visible(t *testing.T, viewer domain.User, opts domain.QueryOptions) []domain.Post {
	t.Helper()
	normalized, err := opts.Normalize()
	require.NoError(t, err)

	posts, err := f.visibility.VisiblePosts(context.Background(), viewer, normalized)
	require.NoError(t, err)
	return posts
}

func (f *fixture) postsFrom(t *testing.T, viewer domain.User, person domain.Person) []domain.Post {
	t.Helper()
	normalized, err := domain.QueryOptions{}.NormalizeForAuthor()
	require.NoError(t, err)

	posts, err := f.visibility.PostsFrom(context.Background(), viewer, person.ID, normalized)
	require.NoError(t, err)
	return posts
}

func (f *fixture) setTimes(t *testing.T, postID int64, created, updated time.Time) {
	t.Helper()
	err := f.db.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]any{
			"created_at": created.UTC(),
			"updated_at": updated.UTC(),
		}).Error
	require.NoError(t, err)
}

func (f *fixture) aspectIDs(t *testing.T, user domain.User) []int64 {
	t.Helper()
	aspects, err := f.aspects.List(context.Background(), user.ID)
	require.NoError(t, err)

	ids := make([]int64, 0, len(aspects))
	for _, a := range aspects {
		ids = append(ids, a.ID)
	}
	return ids
}

func postIDs(posts []domain.Post) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func personIDs(people []domain.Person) []int64 {
	ids := make([]int64, 0, len(people))
	for _, p := range people {
		ids = append(ids, p.ID)
	}
	return ids
}

func aspectIDsOf(aspects []domain.Aspect) []int64 {
	ids := make([]int64, 0, len(aspects))
	for _, a := range aspects {
		ids = append(ids, a.ID)
	}
	return ids
}
