package catalog

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps recently read exercises in a fixed-size freecache segment, keyed by id.
type Cache struct {
	cache         *freecache.Cache
	expireSeconds int
}

func NewCache(sizeMB int, expire time.Duration) *Cache {
	return &Cache{
		cache:         freecache.NewCache(sizeMB * megabyte),
		expireSeconds: int(expire.Seconds()),
	}
}

func cacheKey(id int) []byte {
	return []byte("exercise::" + strconv.Itoa(id))
}

func (c *Cache) Get(id int) (*Exercise, bool) {
	exerciseBytes, err := c.cache.Get(cacheKey(id))
	if err != nil {
		return nil, false
	}

	var e Exercise
	if err := json.Unmarshal(exerciseBytes, &e); err != nil {
		log.Errorf("failed to unmarshal exercise %d from cache: %s", id, err)
		c.Invalidate(id)
		return nil, false
	}

	return &e, true
}

func (c *Cache) Set(e *Exercise) {
	exerciseBytes, err := json.Marshal(e)
	if err != nil {
		log.Errorf("failed to marshal exercise %d for cache: %s", e.ID, err)
		return
	}
	if err := c.cache.Set(cacheKey(e.ID), exerciseBytes, c.expireSeconds); err != nil {
		log.Errorf("failed to write exercise %d cache: %s", e.ID, err)
	}
}

func (c *Cache) Invalidate(id int) {
	c.cache.Del(cacheKey(id))
}

func (c *Cache) Clear() {
	c.cache.Clear()
}
