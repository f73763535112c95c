package main

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/totegamma/concrnt-aspects/internal/config"
	"github.com/totegamma/concrnt-aspects/internal/infra/cache"
	"github.com/totegamma/concrnt-aspects/internal/infra/database"
	"github.com/totegamma/concrnt-aspects/internal/infra/repository"
	"github.com/totegamma/concrnt-aspects/internal/service"
	"github.com/totegamma/concrnt-aspects/internal/usecase"
)

// app holds the wired dependency graph shared by every subcommand.
type app struct {
	config config.Config
	db     *gorm.DB

	users    *repository.UserRepository
	persons  *repository.PersonRepository
	aspects  *repository.AspectRepository
	contacts *repository.ContactRepository
	posts    *repository.PostRepository
	visible  *repository.VisibilityRepository

	userUsecase         *usecase.UserUsecase
	relationshipUsecase *usecase.RelationshipUsecase
	auth                *service.AuthService
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

func newApp(cmd *cobra.Command) (*app, error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(conf.Server.Driver, conf.Server.PostgresDsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	var store cache.Store
	if conf.Server.MemcachedAddr != "" {
		store = cache.NewMemcacheStore(database.NewMemcached(conf.Server.MemcachedAddr))
	} else {
		store = cache.NewLocalStore(conf.Server.PersonCacheTTL)
	}
	pc := cache.NewPersonCache(store, conf.Server.PersonCacheTTL)

	a := &app{
		config:   conf,
		db:       db,
		users:    repository.NewUserRepository(db, pc),
		persons:  repository.NewPersonRepository(db, pc),
		aspects:  repository.NewAspectRepository(db),
		contacts: repository.NewContactRepository(db),
		posts:    repository.NewPostRepository(db),
		visible:  repository.NewVisibilityRepository(db),
	}
	a.userUsecase = usecase.NewUserUsecase(a.users, conf.Domain())
	a.relationshipUsecase = usecase.NewRelationshipUsecase(a.contacts, a.aspects, a.persons)
	a.auth = service.NewAuthService(conf.Domain(), conf.Server.JwtSecret, a.users)

	return a, nil
}

// events returns a redis backed publisher, or nil when redis is not configured.
func (a *app) events(ctx context.Context) (usecase.EventPublisher, func(), error) {
	if a.config.Server.RedisAddr == "" {
		slog.Info("redis not configured, events disabled", slog.String("module", "main"))
		return nil, func() {}, nil
	}

	rdb, err := database.NewRedis(ctx, a.config.Server.RedisAddr, "", a.config.Server.RedisDB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect redis")
	}
	return service.NewSignalService(rdb, "aspectd:"), func() { rdb.Close() }, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
