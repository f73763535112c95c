package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

func TestCreatePostRejectsForeignAspect(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.Create(context.Background(), f.alice, domain.NewPost{
		Type:      domain.PostTypeStatusMessage,
		Text:      "hi",
		AspectIDs: []int64{f.alicesAspect.ID, f.evesAspect.ID},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.PostVisibility{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostToAllAspects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newAspect(t, f.alice, "work")
	f.newAspect(t, f.alice, "family")

	post := f.post(t, f.alice, domain.NewPost{Text: "everyone", ToAll: true})
	assert.NotEmpty(t, post.GUID)
	assert.Equal(t, f.alice.PersonID, post.AuthorID)

	visibilities, err := f.posts.Visibilities(ctx, post.ID)
	require.NoError(t, err)

	var targets []int64
	for _, v := range visibilities {
		assert.False(t, v.Hidden)
		targets = append(targets, v.AspectID)
	}
	assert.Equal(t, f.aspectIDs(t, f.alice), targets)
}

func TestCreatePostDeduplicatesTargets(t *testing.T) {
	f := newFixture(t)

	post := f.post(t, f.alice, domain.NewPost{AspectIDs: []int64{f.alicesAspect.ID, f.alicesAspect.ID}})

	visibilities, err := f.posts.Visibilities(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Len(t, visibilities, 1)
}

func TestSetHiddenRequiresOwnAspect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.post(t, f.bob, domain.NewPost{AspectIDs: []int64{f.bobsAspect.ID}})

	err := f.posts.SetHidden(ctx, f.alice, post.ID, f.bobsAspect.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.posts.SetHidden(ctx, f.bob, post.ID, f.alicesAspect.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.posts.SetHidden(ctx, f.bob, post.ID, f.bobsAspect.ID, true))
	visibilities, err := f.posts.Visibilities(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, visibilities, 1)
	assert.True(t, visibilities[0].Hidden)
}

func TestEditBumpsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.post(t, f.alice, domain.NewPost{Text: "draft", Public: true})
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f.setTimes(t, post.ID, past, past)

	edited, err := f.posts.Edit(ctx, f.alice, post.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Text)
	assert.True(t, edited.CreatedAt.Equal(past))
	assert.True(t, edited.UpdatedAt.After(past))

	_, err = f.posts.Edit(ctx, f.bob, post.ID, "stolen")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.post(t, f.alice, domain.NewPost{Text: "hello", Pending: true})

	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.GUID, got.GUID)
	assert.True(t, got.Pending)

	_, err = f.posts.Get(ctx, post.ID+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
