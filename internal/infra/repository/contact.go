package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ContactFor returns the viewer's contact pointing at personID, or nil.
func (r *ContactRepository) ContactFor(ctx context.Context, viewer domain.User, personID int64) (*domain.Contact, error) {
	if personID == 0 {
		return nil, nil
	}

	var m models.Contact
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("user_id = ? AND person_id = ?", viewer.ID, personID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("contact.ContactFor", err)
	}

	var aspectIDs []int64
	err = r.db.WithContext(ctx).
		Model(&models.AspectMembership{}).
		Where("contact_id = ?", m.ID).
		Order("aspect_id").
		Pluck("aspect_id", &aspectIDs).Error
	if err != nil {
		return nil, wrap("contact.ContactFor", err)
	}

	return &domain.Contact{
		ID:        m.ID,
		UserID:    m.UserID,
		PersonID:  m.PersonID,
		Pending:   m.Pending,
		Person:    toDomainPerson(m.Person),
		AspectIDs: aspectIDs,
	}, nil
}

// AspectsWithPerson returns each of the viewer's aspects holding a contact for
// personID once, however many memberships exist.
func (r *ContactRepository) AspectsWithPerson(ctx context.Context, viewer domain.User, personID int64) ([]domain.Aspect, error) {
	members := r.db.
		Table("aspect_memberships").
		Select("aspect_memberships.aspect_id").
		Joins("JOIN contacts ON contacts.id = aspect_memberships.contact_id").
		Where("contacts.user_id = ? AND contacts.person_id = ?", viewer.ID, personID)

	var ms []models.Aspect
	err := r.db.WithContext(ctx).
		Where("aspects.user_id = ? AND aspects.id IN (?)", viewer.ID, members).
		Order("aspects.id").
		Find(&ms).Error
	if err != nil {
		return nil, wrap("contact.AspectsWithPerson", err)
	}

	aspects := make([]domain.Aspect, 0, len(ms))
	for _, m := range ms {
		aspects = append(aspects, toDomainAspect(m))
	}
	return aspects, nil
}

// PeopleInAspects returns the distinct targets of the viewer's non-pending
// contacts placed in any of aspectIDs. Aspects owned by someone else add nothing.
func (r *ContactRepository) PeopleInAspects(ctx context.Context, viewer domain.User, aspectIDs []int64, filter domain.PeopleFilter) ([]domain.Person, error) {
	if len(aspectIDs) == 0 {
		return []domain.Person{}, nil
	}

	targets := r.db.
		Table("contacts").
		Select("contacts.person_id").
		Joins("JOIN aspect_memberships ON aspect_memberships.contact_id = contacts.id").
		Joins("JOIN aspects ON aspects.id = aspect_memberships.aspect_id").
		Where("aspects.user_id = ? AND aspects.id IN ?", viewer.ID, aspectIDs).
		Where("contacts.user_id = ? AND contacts.pending = ?", viewer.ID, false)

	q := r.db.WithContext(ctx).Where("people.id IN (?)", targets)
	switch filter {
	case domain.PeopleLocal:
		q = q.Where("people.owner_id IS NOT NULL")
	case domain.PeopleRemote:
		q = q.Where("people.owner_id IS NULL")
	}

	var ms []models.Person
	if err := q.Order("people.id").Find(&ms).Error; err != nil {
		return nil, wrap("contact.PeopleInAspects", err)
	}

	people := make([]domain.Person, 0, len(ms))
	for _, m := range ms {
		people = append(people, toDomainPerson(m))
	}
	return people, nil
}

// Create adds a contact from viewer to personID placed in aspectIDs. All
// aspects must belong to viewer. An existing contact keeps its pending state
// and gains the new memberships.
func (r *ContactRepository) Create(ctx context.Context, viewer domain.User, personID int64, pending bool, aspectIDs []int64) (domain.Contact, error) {
	var contact models.Contact
	var memberships []int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targets := uniqueIDs(aspectIDs)
		owned, err := ownedAspectIDs(tx, viewer.ID, targets)
		if err != nil {
			return err
		}
		if len(owned) != len(targets) {
			return domain.NotFoundError{Resource: "aspect"}
		}

		contact, err = ensureContact(tx, viewer.ID, personID, pending)
		if err != nil {
			return err
		}

		for _, aspectID := range owned {
			if err := addMembership(tx, aspectID, contact.ID); err != nil {
				return err
			}
		}

		return tx.Model(&models.AspectMembership{}).
			Where("contact_id = ?", contact.ID).
			Order("aspect_id").
			Pluck("aspect_id", &memberships).Error
	})
	if err != nil {
		return domain.Contact{}, wrap("contact.Create", err)
	}

	return domain.Contact{
		ID:        contact.ID,
		UserID:    contact.UserID,
		PersonID:  contact.PersonID,
		Pending:   contact.Pending,
		AspectIDs: memberships,
	}, nil
}

// Accept clears the pending flag of the viewer's contact for personID.
func (r *ContactRepository) Accept(ctx context.Context, viewer domain.User, personID int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_id = ? AND person_id = ?", viewer.ID, personID).
		Update("pending", false)
	if res.Error != nil {
		return wrap("contact.Accept", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "contact"}
	}
	return nil
}

// AddToAspect places the viewer's contact into one more of the viewer's aspects.
// Adding an existing membership is a no-op.
func (r *ContactRepository) AddToAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwnership(tx, viewer.ID, contactID, aspectID); err != nil {
			return err
		}
		return addMembership(tx, aspectID, contactID)
	})
	return wrap("contact.AddToAspect", err)
}

// RemoveFromAspect drops one membership. It may leave the contact in no aspect.
func (r *ContactRepository) RemoveFromAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	owned := r.db.Model(&models.Aspect{}).Select("id").Where("user_id = ?", viewer.ID)

	res := r.db.WithContext(ctx).
		Where("aspect_id = ? AND contact_id = ? AND aspect_id IN (?)", aspectID, contactID, owned).
		Delete(&models.AspectMembership{})
	if res.Error != nil {
		return wrap("contact.RemoveFromAspect", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "aspect membership"}
	}
	return nil
}

// Move re-files the viewer's contact for personID from one aspect to another
// in one transaction, so readers see it in exactly one of the two.
func (r *ContactRepository) Move(ctx context.Context, viewer domain.User, personID, fromAspectID, toAspectID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact models.Contact
		err := forUpdate(tx).
			Where("user_id = ? AND person_id = ?", viewer.ID, personID).
			Take(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "contact"}
		}
		if err != nil {
			return err
		}

		if err := checkOwnership(tx, viewer.ID, contact.ID, fromAspectID, toAspectID); err != nil {
			return err
		}

		var count int64
		err = tx.Model(&models.AspectMembership{}).
			Where("aspect_id = ? AND contact_id = ?", fromAspectID, contact.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return domain.NotFoundError{Resource: "aspect membership"}
		}

		if fromAspectID == toAspectID {
			return nil
		}

		if err := addMembership(tx, toAspectID, contact.ID); err != nil {
			return err
		}
		return tx.
			Where("aspect_id = ? AND contact_id = ?", fromAspectID, contact.ID).
			Delete(&models.AspectMembership{}).Error
	})
	return wrap("contact.Move", err)
}

// Connect makes a and b mutual, non-pending contacts, a filing b into
// aspectA and b filing a into aspectB.
func (r *ContactRepository) Connect(ctx context.Context, a domain.User, aspectA int64, b domain.User, aspectB int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, edge := range []struct {
			owner    domain.User
			aspectID int64
			target   int64
		}{
			{owner: a, aspectID: aspectA, target: b.PersonID},
			{owner: b, aspectID: aspectB, target: a.PersonID},
		} {
			owned, err := ownedAspectIDs(tx, edge.owner.ID, []int64{edge.aspectID})
			if err != nil {
				return err
			}
			if len(owned) != 1 {
				return domain.NotFoundError{Resource: "aspect"}
			}

			contact, err := ensureContact(tx, edge.owner.ID, edge.target, false)
			if err != nil {
				return err
			}
			if contact.Pending {
				if err := tx.Model(&contact).Update("pending", false).Error; err != nil {
					return err
				}
			}
			if err := addMembership(tx, edge.aspectID, contact.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("contact.Connect", err)
}

func ensureContact(tx *gorm.DB, userID, personID int64, pending bool) (models.Contact, error) {
	contact := models.Contact{
		UserID:   userID,
		PersonID: personID,
		Pending:  pending,
	}
	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "person_id"}},
		DoNothing: true,
	}).Create(&contact).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return models.Contact{}, domain.NotFoundError{Resource: "person"}
	}
	if err != nil {
		return models.Contact{}, err
	}

	var stored models.Contact
	err = forUpdate(tx).
		Where("user_id = ? AND person_id = ?", userID, personID).
		Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Contact{}, domain.NotFoundError{Resource: "person"}
	}
	return stored, err
}

func addMembership(tx *gorm.DB, aspectID, contactID int64) error {
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(&models.AspectMembership{
		AspectID:  aspectID,
		ContactID: contactID,
	}).Error
}

// checkOwnership verifies that the contact and every aspect belong to userID.
func checkOwnership(tx *gorm.DB, userID, contactID int64, aspectIDs ...int64) error {
	var count int64
	err := tx.Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", contactID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.NotFoundError{Resource: "contact"}
	}

	targets := uniqueIDs(aspectIDs)
	owned, err := ownedAspectIDs(tx, userID, targets)
	if err != nil {
		return err
	}
	if len(owned) != len(targets) {
		return domain.NotFoundError{Resource: "aspect"}
	}
	return nil
}
