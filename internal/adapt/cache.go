package adapt

import (
	"fmt"
	"strconv"

	"arena/internal/member"
	"arena/internal/signature"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps adaptations per (implementation, specification) for the session.
type Cache struct {
	engine  *Engine
	entries *lru.Cache[string, []*AdaptedImplementation]
	opts    []Option
}

func NewCache(engine *Engine, size int, opts ...Option) (*Cache, error) {
	entries, err := lru.New[string, []*AdaptedImplementation](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptation cache: %w", err)
	}
	return &Cache{engine: engine, entries: entries, opts: opts}, nil
}

// AdaptAll returns the cached adaptations of class or computes them.
func (c *Cache) AdaptAll(spec *signature.InterfaceSpecification, class *member.Class, limit int) []*AdaptedImplementation {
	key := class.Name + "\x00" + spec.Key() + "\x00" + strconv.Itoa(limit)
	if v, ok := c.entries.Get(key); ok {
		return v
	}
	v := c.engine.AdaptAll(spec, class, limit, c.opts...)
	c.entries.Add(key, v)
	return v
}

func (c *Cache) Len() int { return c.entries.Len() }
