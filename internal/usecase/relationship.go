package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

// RelationshipUsecase manages aspects, contacts and memberships.
type RelationshipUsecase struct {
	contacts ContactRepository
	aspects  AspectRepository
	persons  PersonRepository
}

func NewRelationshipUsecase(contacts ContactRepository, aspects AspectRepository, persons PersonRepository) *RelationshipUsecase {
	return &RelationshipUsecase{
		contacts: contacts,
		aspects:  aspects,
		persons:  persons,
	}
}

// ContactFor returns the viewer's contact for person, or nil. A nil person is
// not an error.
func (uc *RelationshipUsecase) ContactFor(ctx context.Context, viewer domain.User, person *domain.Person) (*domain.Contact, error) {
	if person == nil {
		return nil, nil
	}
	return uc.ContactForPersonID(ctx, viewer, person.ID)
}

func (uc *RelationshipUsecase) ContactForPersonID(ctx context.Context, viewer domain.User, personID int64) (*domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.ContactFor")
	defer span.End()

	contact, err := uc.contacts.ContactFor(ctx, viewer, personID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return contact, nil
}

func (uc *RelationshipUsecase) AspectsWithPerson(ctx context.Context, viewer domain.User, personID int64) ([]domain.Aspect, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.AspectsWithPerson")
	defer span.End()

	aspects, err := uc.contacts.AspectsWithPerson(ctx, viewer, personID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return aspects, nil
}

func (uc *RelationshipUsecase) PeopleInAspects(ctx context.Context, viewer domain.User, aspectIDs []int64, filter domain.PeopleFilter) ([]domain.Person, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.PeopleInAspects")
	defer span.End()

	people, err := uc.contacts.PeopleInAspects(ctx, viewer, aspectIDs, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return people, nil
}

func (uc *RelationshipUsecase) MoveContact(ctx context.Context, viewer domain.User, personID, fromAspectID, toAspectID int64) error {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.MoveContact")
	defer span.End()

	err := uc.contacts.Move(ctx, viewer, personID, fromAspectID, toAspectID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.InfoContext(
		ctx, "contact moved",
		slog.Int64("user", viewer.ID),
		slog.Int64("person", personID),
		slog.Int64("from", fromAspectID),
		slog.Int64("to", toAspectID),
		slog.String("module", "relationship"),
	)
	return nil
}

func (uc *RelationshipUsecase) AddContactToAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.AddContactToAspect")
	defer span.End()

	err := uc.contacts.AddToAspect(ctx, viewer, contactID, aspectID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (uc *RelationshipUsecase) RemoveContactFromAspect(ctx context.Context, viewer domain.User, contactID, aspectID int64) error {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.RemoveContactFromAspect")
	defer span.End()

	err := uc.contacts.RemoveFromAspect(ctx, viewer, contactID, aspectID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// CreateContact starts sharing with a person. The person must already be known.
func (uc *RelationshipUsecase) CreateContact(ctx context.Context, viewer domain.User, personID int64, pending bool, aspectIDs []int64) (domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.CreateContact")
	defer span.End()

	person, err := uc.persons.Get(ctx, personID)
	if err != nil {
		span.RecordError(err)
		return domain.Contact{}, err
	}
	if person.ID == viewer.PersonID {
		return domain.Contact{}, domain.InvalidOptionError{Option: "person", Reason: "cannot add yourself as a contact"}
	}

	contact, err := uc.contacts.Create(ctx, viewer, personID, pending, aspectIDs)
	if err != nil {
		span.RecordError(err)
		return domain.Contact{}, err
	}
	contact.Person = person
	return contact, nil
}

func (uc *RelationshipUsecase) AcceptContact(ctx context.Context, viewer domain.User, personID int64) error {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.AcceptContact")
	defer span.End()

	err := uc.contacts.Accept(ctx, viewer, personID)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Connect makes two local users mutual contacts.
func (uc *RelationshipUsecase) Connect(ctx context.Context, a domain.User, aspectA int64, b domain.User, aspectB int64) error {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.Connect")
	defer span.End()

	if a.ID == b.ID {
		return domain.InvalidOptionError{Option: "user", Reason: "cannot connect a user with itself"}
	}

	err := uc.contacts.Connect(ctx, a, aspectA, b, aspectB)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (uc *RelationshipUsecase) CreateAspect(ctx context.Context, owner domain.User, name string) (domain.Aspect, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.CreateAspect")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Aspect{}, domain.InvalidOptionError{Option: "name", Reason: "must not be empty"}
	}

	aspect, err := uc.aspects.Create(ctx, owner.ID, name)
	if err != nil {
		span.RecordError(err)
		return domain.Aspect{}, err
	}
	return aspect, nil
}

func (uc *RelationshipUsecase) Aspects(ctx context.Context, owner domain.User) ([]domain.Aspect, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.Aspects")
	defer span.End()

	aspects, err := uc.aspects.List(ctx, owner.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return aspects, nil
}

// DiscoverPerson records a remote identity by handle so it can be added as a
// contact. A known handle returns the existing person.
func (uc *RelationshipUsecase) DiscoverPerson(ctx context.Context, handle string) (domain.Person, error) {
	ctx, span := tracer.Start(ctx, "Relationship.Usecase.DiscoverPerson")
	defer span.End()

	handle = strings.ToLower(strings.TrimSpace(handle))
	if strings.Count(handle, "@") != 1 || strings.HasPrefix(handle, "@") || strings.HasSuffix(handle, "@") {
		return domain.Person{}, domain.InvalidOptionError{Option: "handle", Reason: "expected user@host"}
	}

	person, err := uc.persons.Create(ctx, domain.Person{Handle: handle})
	if err != nil {
		span.RecordError(err)
		return domain.Person{}, err
	}
	return person, nil
}
