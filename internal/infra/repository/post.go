package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create writes the post and one visibility row per target aspect in one
// transaction. Every target must be an aspect of the author.
func (r *PostRepository) Create(ctx context.Context, author domain.User, input domain.NewPost) (domain.Post, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	post := models.Post{
		GUID:      uuid.NewString(),
		AuthorID:  author.PersonID,
		Type:      string(input.Type),
		Text:      input.Text,
		Public:    input.Public,
		Pending:   input.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var targets []int64
		if input.ToAll {
			if err := tx.Model(&models.Aspect{}).
				Where("user_id = ?", author.ID).
				Order("id").
				Pluck("id", &targets).Error; err != nil {
				return err
			}
		} else {
			requested := uniqueIDs(input.AspectIDs)
			owned, err := ownedAspectIDs(tx, author.ID, requested)
			if err != nil {
				return err
			}
			if len(owned) != len(requested) {
				return domain.NotFoundError{Resource: "aspect"}
			}
			targets = owned
		}

		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return err
		}

		if len(targets) == 0 {
			return nil
		}

		visibilities := make([]models.PostVisibility, 0, len(targets))
		for _, aspectID := range targets {
			visibilities = append(visibilities, models.PostVisibility{
				PostID:   post.ID,
				AspectID: aspectID,
			})
		}
		return tx.Omit(clause.Associations).Create(&visibilities).Error
	})
	if err != nil {
		return domain.Post{}, wrap("post.Create", err)
	}

	return toDomainPost(post), nil
}

// Get loads a post regardless of visibility. It is meant for the author's own
// tooling; readers go through the visibility repository.
func (r *PostRepository) Get(ctx context.Context, id int64) (domain.Post, error) {
	var m models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Post{}, domain.NotFoundError{Resource: "post"}
	}
	if err != nil {
		return domain.Post{}, wrap("post.Get", err)
	}
	return toDomainPost(m), nil
}

// Edit replaces the text of one of the author's posts and bumps updated_at.
func (r *PostRepository) Edit(ctx context.Context, author domain.User, id int64, text string) (domain.Post, error) {
	return r.update(ctx, "post.Edit", author, id, map[string]any{"text": text})
}

// Publish clears the pending flag of one of the author's posts.
func (r *PostRepository) Publish(ctx context.Context, author domain.User, id int64) (domain.Post, error) {
	return r.update(ctx, "post.Publish", author, id, map[string]any{"pending": false})
}

func (r *PostRepository) update(ctx context.Context, op string, author domain.User, id int64, values map[string]any) (domain.Post, error) {
	var post models.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		values["updated_at"] = time.Now().UTC().Truncate(time.Microsecond)
		res := tx.Model(&models.Post{}).
			Where("id = ? AND author_id = ?", id, author.PersonID).
			UpdateColumns(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "post"}
		}
		return tx.Where("id = ?", id).Take(&post).Error
	})
	if err != nil {
		return domain.Post{}, wrap(op, err)
	}
	return toDomainPost(post), nil
}

// SetHidden toggles suppression of a post inside one of the author's aspects.
// It affects only that (post, aspect) pair.
func (r *PostRepository) SetHidden(ctx context.Context, author domain.User, postID, aspectID int64, hidden bool) error {
	owned := r.db.Model(&models.Aspect{}).Select("id").Where("user_id = ?", author.ID)

	res := r.db.WithContext(ctx).
		Model(&models.PostVisibility{}).
		Where("post_id = ? AND aspect_id = ? AND aspect_id IN (?)", postID, aspectID, owned).
		Update("hidden", hidden)
	if res.Error != nil {
		return wrap("post.SetHidden", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "post visibility"}
	}
	return nil
}

func (r *PostRepository) Visibilities(ctx context.Context, postID int64) ([]domain.PostVisibility, error) {
	var ms []models.PostVisibility
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("aspect_id").
		Find(&ms).Error
	if err != nil {
		return nil, wrap("post.Visibilities", err)
	}

	visibilities := make([]domain.PostVisibility, 0, len(ms))
	for _, m := range ms {
		visibilities = append(visibilities, domain.PostVisibility{
			PostID:   m.PostID,
			AspectID: m.AspectID,
			Hidden:   m.Hidden,
		})
	}
	return visibilities, nil
}
