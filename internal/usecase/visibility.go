package usecase

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

var tracer = otel.Tracer("usecase")

// VisibilityUsecase is the reader-facing boundary of the visibility query.
// Options are validated and defaulted here before any SQL runs.
type VisibilityUsecase struct {
	repo    VisibilityRepository
	persons PersonRepository
}

func NewVisibilityUsecase(repo VisibilityRepository, persons PersonRepository) *VisibilityUsecase {
	return &VisibilityUsecase{repo: repo, persons: persons}
}

// VisiblePosts returns one page of the viewer's stream along with the options
// actually applied, so callers can derive the next cursor.
func (uc *VisibilityUsecase) VisiblePosts(ctx context.Context, viewer domain.User, opts domain.QueryOptions) ([]domain.Post, domain.QueryOptions, error) {
	ctx, span := tracer.Start(ctx, "Visibility.Usecase.VisiblePosts")
	defer span.End()

	normalized, err := opts.Normalize()
	if err != nil {
		span.RecordError(err)
		return nil, opts, err
	}
	span.SetAttributes(
		attribute.Int64("viewer", viewer.ID),
		attribute.String("order", normalized.Order.String()),
		attribute.Int("limit", normalized.Limit),
	)

	posts, err := uc.repo.VisiblePosts(ctx, viewer, normalized)
	if err != nil {
		span.RecordError(err)
		return nil, normalized, err
	}
	return posts, normalized, nil
}

// FindVisiblePostByID returns the post when the viewer may see it. Absent and
// invisible posts are indistinguishable and both yield nil.
func (uc *VisibilityUsecase) FindVisiblePostByID(ctx context.Context, viewer domain.User, id int64) (*domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Visibility.Usecase.FindVisiblePostByID")
	defer span.End()

	if id <= 0 {
		return nil, nil
	}

	post, err := uc.repo.FindVisiblePost(ctx, viewer, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return post, nil
}

// PostsFrom is the profile view of one person. An unknown person has an
// empty profile, like an invisible post.
func (uc *VisibilityUsecase) PostsFrom(ctx context.Context, viewer domain.User, personID int64, opts domain.QueryOptions) ([]domain.Post, domain.QueryOptions, error) {
	ctx, span := tracer.Start(ctx, "Visibility.Usecase.PostsFrom")
	defer span.End()

	normalized, err := opts.NormalizeForAuthor()
	if err != nil {
		span.RecordError(err)
		return nil, opts, err
	}

	if _, err := uc.persons.Get(ctx, personID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Post{}, normalized, nil
		}
		span.RecordError(err)
		return nil, normalized, err
	}

	posts, err := uc.repo.PostsFrom(ctx, viewer, personID, normalized)
	if err != nil {
		span.RecordError(err)
		return nil, normalized, err
	}
	return posts, normalized, nil
}
