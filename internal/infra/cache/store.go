// Package cache holds the read-through caches placed in front of the store.
package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"
)

// Store is a byte-oriented key value cache.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

type MemcacheStore struct {
	mc *memcache.Client
}

func NewMemcacheStore(mc *memcache.Client) *MemcacheStore {
	return &MemcacheStore{mc: mc}
}

func (s *MemcacheStore) Get(key string) ([]byte, bool, error) {
	item, err := s.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (s *MemcacheStore) Set(key string, value []byte, ttl time.Duration) error {
	return s.mc.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
}

func (s *MemcacheStore) Delete(key string) error {
	err := s.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// LocalStore keeps entries in process memory.
type LocalStore struct {
	c *gocache.Cache
}

func NewLocalStore(defaultTTL time.Duration) *LocalStore {
	return &LocalStore{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (s *LocalStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (s *LocalStore) Set(key string, value []byte, ttl time.Duration) error {
	s.c.Set(key, value, ttl)
	return nil
}

func (s *LocalStore) Delete(key string) error {
	s.c.Delete(key)
	return nil
}
