package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/cache"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

type PersonRepository struct {
	db    *gorm.DB
	cache *cache.PersonCache
}

func NewPersonRepository(db *gorm.DB, pc *cache.PersonCache) *PersonRepository {
	return &PersonRepository{db: db, cache: pc}
}

// Create stores a cached copy of a remote person. An existing row with the
// same handle is returned unchanged.
func (r *PersonRepository) Create(ctx context.Context, person domain.Person) (domain.Person, error) {
	if person.GUID == "" {
		person.GUID = uuid.NewString()
	}

	m := models.Person{
		GUID:    person.GUID,
		Handle:  person.Handle,
		OwnerID: person.OwnerID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "handle"}},
			DoNothing: true,
		}).Create(&m).Error; err != nil {
			return err
		}
		return tx.Where("handle = ?", person.Handle).Take(&m).Error
	})
	if err != nil {
		return domain.Person{}, wrap("person.Create", err)
	}

	return toDomainPerson(m), nil
}

func (r *PersonRepository) Get(ctx context.Context, id int64) (domain.Person, error) {
	if r.cache != nil {
		if p, ok := r.cache.Get(id); ok {
			return p, nil
		}
	}

	var m models.Person
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Person{}, domain.NotFoundError{Resource: "person"}
	}
	if err != nil {
		return domain.Person{}, wrap("person.Get", err)
	}

	p := toDomainPerson(m)
	if r.cache != nil {
		r.cache.Put(p)
	}
	return p, nil
}

// SetOwner moves a person between local (owner set) and remote (nil).
func (r *PersonRepository) SetOwner(ctx context.Context, id int64, owner *int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("id = ?", id).
		Update("owner_id", owner)
	if res.Error != nil {
		return wrap("person.SetOwner", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "person"}
	}
	if r.cache != nil {
		r.cache.Invalidate(id)
	}
	return nil
}
