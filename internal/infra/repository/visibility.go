package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/database/models"
)

// VisibilityRepository answers "which posts may this viewer see".
//
// A post is visible to viewer V when it is not pending and one of:
//
//  1. V authored it;
//  2. it is public and V holds a non-pending contact for its author;
//  3. a non-hidden visibility row links it to an aspect of its author
//     whose memberships include the author's non-pending contact for V.
//
// The cases are OR-ed inside one WHERE over posts, matched through IN
// subqueries, so a post reachable through several rows still comes back once.
type VisibilityRepository struct {
	db *gorm.DB
}

func NewVisibilityRepository(db *gorm.DB) *VisibilityRepository {
	return &VisibilityRepository{db: db}
}

// VisiblePosts expects normalized options.
func (r *VisibilityRepository) VisiblePosts(ctx context.Context, viewer domain.User, opts domain.QueryOptions) ([]domain.Post, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.pending = ?", false).
		Where(r.visibleTo(viewer, opts.ByMembersOf))

	return r.page(q, "visibility.VisiblePosts", opts)
}

// FindVisiblePost returns nil when the post does not exist or is not visible.
func (r *VisibilityRepository) FindVisiblePost(ctx context.Context, viewer domain.User, id int64) (*domain.Post, error) {
	var m models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.id = ?", id).
		Where("posts.pending = ?", false).
		Where(r.visibleTo(viewer, nil)).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("visibility.FindVisiblePost", err)
	}

	post := toDomainPost(m)
	return &post, nil
}

// PostsFrom returns what the viewer may see of one author, plus the author's
// public posts when the viewer does not follow them.
func (r *VisibilityRepository) PostsFrom(ctx context.Context, viewer domain.User, personID int64, opts domain.QueryOptions) ([]domain.Post, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.author_id = ?", personID).
		Where("posts.pending = ?", false).
		Where(r.visibleTo(viewer, opts.ByMembersOf).Or("posts.public = ?", true))

	return r.page(q, "visibility.PostsFrom", opts)
}

// visibleTo builds the OR group of the three visibility cases.
//
// byMembersOf narrows cases 2 and 3 by exclusion: an author is dropped only
// when the viewer filed them in some aspect and none of those aspects is
// listed. Authors the viewer never filed, or holds no contact for, stay.
func (r *VisibilityRepository) visibleTo(viewer domain.User, byMembersOf []int64) *gorm.DB {
	followed := r.db.
		Model(&models.Contact{}).
		Select("contacts.person_id").
		Where("contacts.user_id = ? AND contacts.pending = ?", viewer.ID, false)

	shared := r.db.
		Table("post_visibilities").
		Select("post_visibilities.post_id").
		Joins("JOIN aspects ON aspects.id = post_visibilities.aspect_id").
		Joins("JOIN users ON users.id = aspects.user_id").
		Joins("JOIN posts AS shared_posts ON shared_posts.id = post_visibilities.post_id AND shared_posts.author_id = users.person_id").
		Joins("JOIN aspect_memberships ON aspect_memberships.aspect_id = aspects.id").
		Joins("JOIN contacts AS recipients ON recipients.id = aspect_memberships.contact_id").
		Where("post_visibilities.hidden = ?", false).
		Where("recipients.user_id = aspects.user_id AND recipients.person_id = ? AND recipients.pending = ?", viewer.PersonID, false)

	if byMembersOf != nil {
		excluded := r.filedOutside(viewer, byMembersOf)
		followed = followed.Where("contacts.person_id NOT IN (?)", excluded)
		shared = shared.Where("users.person_id NOT IN (?)", excluded)
	}

	return r.db.
		Where("posts.author_id = ?", viewer.PersonID).
		Or("posts.public = ? AND posts.author_id IN (?)", true, followed).
		Or("posts.id IN (?)", shared)
}

// filedOutside selects the persons the viewer filed in at least one aspect
// but in none of aspectIDs. Aspects the viewer does not own never match.
func (r *VisibilityRepository) filedOutside(viewer domain.User, aspectIDs []int64) *gorm.DB {
	filed := r.db.
		Table("aspect_memberships").
		Select("aspect_memberships.contact_id").
		Joins("JOIN aspects ON aspects.id = aspect_memberships.aspect_id").
		Where("aspects.user_id = ?", viewer.ID)

	return r.db.
		Model(&models.Contact{}).
		Select("contacts.person_id").
		Where("contacts.user_id = ?", viewer.ID).
		Where("contacts.id IN (?)", filed).
		Where("contacts.id NOT IN (?)", r.membersOf(viewer, aspectIDs))
}

// membersOf selects the viewer's contacts filed in the given aspects,
// ignoring aspects the viewer does not own.
func (r *VisibilityRepository) membersOf(viewer domain.User, aspectIDs []int64) *gorm.DB {
	return r.db.
		Table("aspect_memberships").
		Select("aspect_memberships.contact_id").
		Joins("JOIN aspects ON aspects.id = aspect_memberships.aspect_id").
		Where("aspects.user_id = ? AND aspects.id IN ?", viewer.ID, aspectIDs)
}

// page applies type, keyset cursor, ordering and limit, in that order.
func (r *VisibilityRepository) page(q *gorm.DB, op string, opts domain.QueryOptions) ([]domain.Post, error) {
	if opts.Type != "" {
		q = q.Where("posts.type = ?", string(opts.Type))
	}

	col := "posts." + string(opts.Order.Field)
	cmp := "<"
	if opts.Order.Direction == domain.Asc {
		cmp = ">"
	}

	if c := opts.MaxTime; c != nil {
		if c.ID == 0 {
			q = q.Where(col+" "+cmp+" ?", c.Time)
		} else {
			q = q.Where("(("+col+" "+cmp+" ?) OR ("+col+" = ? AND posts.id "+cmp+" ?))", c.Time, c.Time, c.ID)
		}
	}

	dir := string(opts.Order.Direction)
	var ms []models.Post
	err := q.
		Order(col + " " + dir).
		Order("posts.id " + dir).
		Limit(opts.Limit).
		Find(&ms).Error
	if err != nil {
		return nil, wrap(op, err)
	}

	return toDomainPosts(ms), nil
}
