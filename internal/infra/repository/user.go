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

type UserRepository struct {
	db    *gorm.DB
	cache *cache.PersonCache
}

func NewUserRepository(db *gorm.DB, pc *cache.PersonCache) *UserRepository {
	return &UserRepository{db: db, cache: pc}
}

// Register creates the person, the user controlling it and the user's
// default aspect in one transaction.
func (r *UserRepository) Register(ctx context.Context, username, handle string) (domain.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		person := models.Person{
			GUID:   uuid.NewString(),
			Handle: handle,
		}
		if err := tx.Create(&person).Error; err != nil {
			return err
		}

		user = models.User{
			Username: username,
			PersonID: person.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return err
		}

		if err := tx.Model(&person).Update("owner_id", user.ID).Error; err != nil {
			return err
		}
		person.OwnerID = &user.ID
		user.Person = person

		aspect := models.Aspect{
			UserID: user.ID,
			Name:   domain.DefaultAspectName,
		}
		return tx.Omit(clause.Associations).Create(&aspect).Error
	})
	if err != nil {
		return domain.User{}, wrap("user.Register", err)
	}

	return toDomainUser(user), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (domain.User, error) {
	var m models.User
	err := r.db.WithContext(ctx).Preload("Person").Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, wrap("user.Get", err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var m models.User
	err := r.db.WithContext(ctx).Preload("Person").Where("username = ?", username).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, wrap("user.GetByUsername", err)
	}
	return toDomainUser(m), nil
}

// Delete removes the user with its aspects, contacts and their join rows.
// The person row and its posts are kept and the person becomes ownerless.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	var personID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := forUpdate(tx).Where("id = ?", id).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "user"}
		}
		if err != nil {
			return err
		}
		personID = user.PersonID

		aspects := tx.Model(&models.Aspect{}).Select("id").Where("user_id = ?", id)
		contacts := tx.Model(&models.Contact{}).Select("id").Where("user_id = ?", id)

		if err := tx.Where("aspect_id IN (?) OR contact_id IN (?)", aspects, contacts).
			Delete(&models.AspectMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("aspect_id IN (?)", aspects).Delete(&models.PostVisibility{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Contact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Aspect{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Person{}).Where("id = ?", user.PersonID).Update("owner_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return wrap("user.Delete", err)
	}

	if r.cache != nil {
		r.cache.Invalidate(personID)
	}
	return nil
}
