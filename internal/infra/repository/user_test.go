package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Register(ctx, "carol", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, user.Person.IsLocal())
	assert.Equal(t, user.ID, *user.Person.OwnerID)

	aspects, err := f.aspects.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, aspects, 1)
	assert.Equal(t, domain.DefaultAspectName, aspects[0].Name)

	got, err := f.users.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "carol@example.com", got.Person.Handle)

	_, err = f.users.Register(ctx, "carol", "carol2@example.com")
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestGetUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.post(t, f.bob, domain.NewPost{Text: "bye", AspectIDs: []int64{f.bobsAspect.ID}})

	require.NoError(t, f.users.Delete(ctx, f.bob.ID))

	_, err := f.users.Get(ctx, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	person, err := f.persons.Get(ctx, f.bob.PersonID)
	require.NoError(t, err)
	assert.False(t, person.IsLocal())

	var count int64
	require.NoError(t, f.db.Model(&models.Aspect{}).Where("user_id = ?", f.bob.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.Contact{}).Where("user_id = ?", f.bob.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.PostVisibility{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	// the post survives without its visibility rows
	assert.Empty(t, f.visible(t, f.alice, domain.QueryOptions{}))

	// alice still holds her contact for bob's person
	contact, err := f.contacts.ContactFor(ctx, f.alice, f.bob.PersonID)
	require.NoError(t, err)
	assert.NotNil(t, contact)

	err = f.users.Delete(ctx, f.bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
