package domain

import (
	"strconv"
	"strings"
	"time"
)

// OrderField is a post timestamp column usable for ordering and cursoring.
type OrderField string

const (
	OrderUpdatedAt OrderField = "updated_at"
	OrderCreatedAt OrderField = "created_at"
)

// Direction is the sort direction of an Order.
type Direction string

const (
	Desc Direction = "DESC"
	Asc  Direction = "ASC"
)

// Order is a field and direction. Ties are always broken by post id in the same direction.
type Order struct {
	Field     OrderField
	Direction Direction
}

var (
	DefaultOrder       = Order{Field: OrderUpdatedAt, Direction: Desc}
	DefaultAuthorOrder = Order{Field: OrderCreatedAt, Direction: Desc}
)

// ParseOrder reads "field [asc|desc]", e.g. "created_at DESC". Direction defaults to DESC.
func ParseOrder(s string) (Order, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 || len(parts) > 2 {
		return Order{}, InvalidOptionError{Option: "order", Reason: "expected \"<field> [asc|desc]\""}
	}
	o := Order{Field: OrderField(strings.ToLower(parts[0])), Direction: Desc}
	if len(parts) == 2 {
		o.Direction = Direction(strings.ToUpper(parts[1]))
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o Order) validate() error {
	switch o.Field {
	case OrderUpdatedAt, OrderCreatedAt:
	default:
		return InvalidOptionError{Option: "order", Reason: "unknown field " + string(o.Field)}
	}
	switch o.Direction {
	case Desc, Asc:
	default:
		return InvalidOptionError{Option: "order", Reason: "unknown direction " + string(o.Direction)}
	}
	return nil
}

func (o Order) String() string {
	return string(o.Field) + " " + string(o.Direction)
}

// ValueOf returns the ordered timestamp of p.
func (o Order) ValueOf(p Post) time.Time {
	if o.Field == OrderCreatedAt {
		return p.CreatedAt
	}
	return p.UpdatedAt
}

// Cursor is a keyset pagination position. Rows strictly before Time in the
// order direction are returned; when ID is non-zero rows equal to Time whose
// id is before ID are returned as well.
type Cursor struct {
	Time time.Time
	ID   int64
}

// CursorFromTime builds a cursor from a timestamp.
func CursorFromTime(t time.Time) Cursor {
	return Cursor{Time: t.UTC()}
}

// CursorFromUnix builds a cursor from an integer epoch in seconds.
func CursorFromUnix(sec int64) Cursor {
	return Cursor{Time: time.Unix(sec, 0).UTC()}
}

// CursorAfter returns the cursor continuing after the last post of a page.
func CursorAfter(p Post, o Order) Cursor {
	return Cursor{Time: o.ValueOf(p).UTC(), ID: p.ID}
}

// ParseCursor accepts an integer epoch ("1700000000"), an RFC 3339 timestamp,
// either optionally followed by "_<id>".
func ParseCursor(s string) (Cursor, error) {
	s = strings.TrimSpace(s)
	var id int64
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		parsed, err := strconv.ParseInt(s[i+1:], 10, 64)
		if err != nil || parsed <= 0 {
			return Cursor{}, InvalidOptionError{Option: "max_time", Reason: "invalid id suffix"}
		}
		id = parsed
		s = s[:i]
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		c := CursorFromUnix(sec)
		c.ID = id
		return c, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Cursor{}, InvalidOptionError{Option: "max_time", Reason: "expected epoch seconds or RFC 3339 timestamp"}
	}
	c := CursorFromTime(t)
	c.ID = id
	return c, nil
}

func (c Cursor) String() string {
	var s string
	if c.Time.Nanosecond() == 0 {
		s = strconv.FormatInt(c.Time.Unix(), 10)
	} else {
		s = c.Time.UTC().Format(time.RFC3339Nano)
	}
	if c.ID != 0 {
		s += "_" + strconv.FormatInt(c.ID, 10)
	}
	return s
}

// QueryOptions configures a visibility query. The zero value is valid and
// means: all subtypes, every relationship, updated_at DESC, DefaultLimit rows,
// from the newest post.
type QueryOptions struct {
	// Type restricts results to one subtype.
	Type PostType
	// ByMembersOf restricts posts by others to authors the viewer placed in
	// one of these aspects. nil means unrestricted. Aspects not owned by the
	// viewer contribute nothing.
	ByMembersOf []int64
	Order       Order
	Limit       int
	MaxTime     *Cursor
}

// Normalize validates the options and fills defaults.
func (o QueryOptions) Normalize() (QueryOptions, error) {
	return o.normalize(DefaultOrder)
}

// NormalizeForAuthor is Normalize with the per-author default order.
func (o QueryOptions) NormalizeForAuthor() (QueryOptions, error) {
	return o.normalize(DefaultAuthorOrder)
}

func (o QueryOptions) normalize(def Order) (QueryOptions, error) {
	if o.Type != "" && !o.Type.Valid() {
		return o, InvalidOptionError{Option: "type", Reason: "unknown post type " + string(o.Type)}
	}
	if o.Order == (Order{}) {
		o.Order = def
	}
	if o.Order.Direction == "" {
		o.Order.Direction = Desc
	}
	if err := o.Order.validate(); err != nil {
		return o, err
	}
	if o.Limit < 0 {
		return o, InvalidOptionError{Option: "limit", Reason: "must not be negative"}
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.MaxTime != nil {
		c := *o.MaxTime
		c.Time = c.Time.UTC()
		o.MaxTime = &c
	}
	return o, nil
}

// NextCursor returns the cursor for the page after posts, or nil when posts
// is shorter than the limit and therefore the last page.
func (o QueryOptions) NextCursor(posts []Post) *Cursor {
	if len(posts) == 0 || len(posts) < o.Limit {
		return nil
	}
	c := CursorAfter(posts[len(posts)-1], o.Order)
	return &c
}
