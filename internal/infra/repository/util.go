package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

// wrap passes domain errors through and marks everything else as a store failure.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidOption) || errors.Is(err, domain.ErrStore) {
		return err
	}
	return domain.StoreError{Op: op, Err: errors.WithStack(err)}
}

// forUpdate row-locks the selected rows where the dialect supports it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ownedAspectIDs returns the subset of ids owned by userID, deduplicated.
func ownedAspectIDs(tx *gorm.DB, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []int64
	err := tx.Model(&models.Aspect{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("id").
		Pluck("id", &owned).Error
	return owned, err
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toDomainPerson(m models.Person) domain.Person {
	return domain.Person{
		ID:        m.ID,
		GUID:      m.GUID,
		Handle:    m.Handle,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
	}
}

func toDomainUser(m models.User) domain.User {
	return domain.User{
		ID:       m.ID,
		Username: m.Username,
		PersonID: m.PersonID,
		Person:   toDomainPerson(m.Person),
	}
}

func toDomainAspect(m models.Aspect) domain.Aspect {
	return domain.Aspect{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func toDomainPost(m models.Post) domain.Post {
	return domain.Post{
		ID:        m.ID,
		GUID:      m.GUID,
		AuthorID:  m.AuthorID,
		Type:      domain.PostType(m.Type),
		Text:      m.Text,
		Public:    m.Public,
		Pending:   m.Pending,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func toDomainPosts(ms []models.Post) []domain.Post {
	posts := make([]domain.Post, 0, len(ms))
	for _, m := range ms {
		posts = append(posts, toDomainPost(m))
	}
	return posts
}
