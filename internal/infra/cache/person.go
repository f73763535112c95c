package cache

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/totegamma/concrnt-aspects/internal/domain"
)

const defaultPersonTTL = 10 * time.Minute

// PersonCache caches person rows by id. Persons are immutable apart from
// their home-node owner, which the repository invalidates on change.
type PersonCache struct {
	store Store
	ttl   time.Duration
}

func NewPersonCache(store Store, ttl time.Duration) *PersonCache {
	if ttl <= 0 {
		ttl = defaultPersonTTL
	}
	return &PersonCache{store: store, ttl: ttl}
}

func personKey(id int64) string {
	return "person:" + strconv.FormatInt(id, 10)
}

func (c *PersonCache) Get(id int64) (domain.Person, bool) {
	raw, ok, err := c.store.Get(personKey(id))
	if err != nil {
		slog.Warn(
			"person cache get failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
		return domain.Person{}, false
	}
	if !ok {
		return domain.Person{}, false
	}

	var p domain.Person
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Person{}, false
	}
	return p, true
}

func (c *PersonCache) Put(p domain.Person) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.store.Set(personKey(p.ID), raw, c.ttl); err != nil {
		slog.Warn(
			"person cache set failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}

func (c *PersonCache) Invalidate(id int64) {
	if err := c.store.Delete(personKey(id)); err != nil {
		slog.Warn(
			"person cache delete failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
