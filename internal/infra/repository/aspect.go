package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

type AspectRepository struct {
	db *gorm.DB
}

func NewAspectRepository(db *gorm.DB) *AspectRepository {
	return &AspectRepository{db: db}
}

func (r *AspectRepository) Create(ctx context.Context, userID int64, name string) (domain.Aspect, error) {
	m := models.Aspect{
		UserID: userID,
		Name:   name,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Aspect{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.Aspect{}, wrap("aspect.Create", err)
	}
	return toDomainAspect(m), nil
}

// List returns the user's aspects in creation order.
func (r *AspectRepository) List(ctx context.Context, userID int64) ([]domain.Aspect, error) {
	var ms []models.Aspect
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&ms).Error
	if err != nil {
		return nil, wrap("aspect.List", err)
	}

	aspects := make([]domain.Aspect, 0, len(ms))
	for _, m := range ms {
		aspects = append(aspects, toDomainAspect(m))
	}
	return aspects, nil
}

// FindByName returns the user's first aspect with the given name.
func (r *AspectRepository) FindByName(ctx context.Context, userID int64, name string) (domain.Aspect, error) {
	var m models.Aspect
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Order("id").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Aspect{}, domain.NotFoundError{Resource: "aspect"}
	}
	if err != nil {
		return domain.Aspect{}, wrap("aspect.FindByName", err)
	}
	return toDomainAspect(m), nil
}
