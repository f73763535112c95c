package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

// PostUsecase handles authoring. Events are best effort: a failed publish is
// logged and never fails the write that already committed.
type PostUsecase struct {
	repo   PostRepository
	events EventPublisher
}

// NewPostUsecase accepts a nil publisher when events are disabled.
func NewPostUsecase(repo PostRepository, events EventPublisher) *PostUsecase {
	return &PostUsecase{repo: repo, events: events}
}

func (uc *PostUsecase) Create(ctx context.Context, author domain.User, input domain.NewPost) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Create")
	defer span.End()

	if input.Type == "" {
		input.Type = domain.PostTypeStatusMessage
	}
	if !input.Type.Valid() {
		return domain.Post{}, domain.InvalidOptionError{Option: "type", Reason: "unknown post type " + string(input.Type)}
	}

	post, err := uc.repo.Create(ctx, author, input)
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, err
	}

	if !post.Pending {
		uc.emit(ctx, domain.Event{Type: domain.EventPostCreated, PostID: post.ID, AuthorID: post.AuthorID})
	}
	return post, nil
}

func (uc *PostUsecase) Edit(ctx context.Context, author domain.User, id int64, text string) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Edit")
	defer span.End()

	post, err := uc.repo.Edit(ctx, author, id, text)
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, err
	}
	return post, nil
}

func (uc *PostUsecase) Publish(ctx context.Context, author domain.User, id int64) (domain.Post, error) {
	ctx, span := tracer.Start(ctx, "Post.Usecase.Publish")
	defer span.End()

	post, err := uc.repo.Publish(ctx, author, id)
	if err != nil {
		span.RecordError(err)
		return domain.Post{}, err
	}

	uc.emit(ctx, domain.Event{Type: domain.EventPostPublished, PostID: post.ID, AuthorID: post.AuthorID})
	return post, nil
}

func (uc *PostUsecase) SetHidden(ctx context.Context, author domain.User, postID, aspectID int64, hidden bool) error {
	ctx, span := tracer.Start(ctx, "Post.Usecase.SetHidden")
	defer span.End()

	if err := uc.repo.SetHidden(ctx, author, postID, aspectID, hidden); err != nil {
		span.RecordError(err)
		return err
	}

	uc.emit(ctx, domain.Event{
		Type:     domain.EventVisibilityHidden,
		PostID:   postID,
		AuthorID: author.PersonID,
		AspectID: aspectID,
		Hidden:   hidden,
	})
	return nil
}

func (uc *PostUsecase) emit(ctx context.Context, event domain.Event) {
	if uc.events == nil {
		return
	}
	event.Timestamp = time.Now().UTC()

	if err := uc.events.Publish(ctx, event.Type, event); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish event",
			slog.String("error", err.Error()),
			slog.String("type", event.Type),
			slog.Int64("post", event.PostID),
			slog.String("module", "post"),
		)
	}
}
