package usecase

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

type UserUsecase struct {
	repo   UserRepository
	config domain.Config
}

func NewUserUsecase(repo UserRepository, config domain.Config) *UserUsecase {
	return &UserUsecase{repo: repo, config: config}
}

// Register creates a local account whose handle is username@fqdn.
func (uc *UserUsecase) Register(ctx context.Context, username string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Register")
	defer span.End()

	if !usernamePattern.MatchString(username) {
		return domain.User{}, domain.InvalidOptionError{Option: "username", Reason: "must match " + usernamePattern.String()}
	}

	user, err := uc.repo.Register(ctx, username, username+"@"+uc.config.FQDN)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}

	slog.InfoContext(
		ctx, "user registered",
		slog.Int64("user", user.ID),
		slog.String("handle", user.Person.Handle),
		slog.String("module", "user"),
	)
	return user, nil
}

func (uc *UserUsecase) Get(ctx context.Context, id int64) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Get")
	defer span.End()

	user, err := uc.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return user, err
}

func (uc *UserUsecase) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.GetByUsername")
	defer span.End()

	user, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
	}
	return user, err
}

func (uc *UserUsecase) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "User.Usecase.Delete")
	defer span.End()

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	slog.InfoContext(ctx, "user deleted", slog.Int64("user", id), slog.String("module", "user"))
	return nil
}
