package content

import (
	"slices"
	"strings"
	"sync"

	"github.com/starford/worklog/internal/models"
)

// Cache memoises a Source until Invalidate is called. Errors are never
// cached, so a fixed document is picked up on the next call. A result loaded
// while an Invalidate happened is returned but not stored.
type Cache struct {
	src Source

	mu    sync.RWMutex
	gen   uint64
	posts map[models.Section][]models.Post
	tags  map[models.Section][]models.TagCount
	docs  map[string]*models.Document
}

var _ Source = (*Cache)(nil)

// NewCache wraps src.
func NewCache(src Source) *Cache {
	c := &Cache{src: src}
	c.reset()
	return c
}

// Invalidate drops every cached result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.reset()
}

func (c *Cache) reset() {
	c.posts = make(map[models.Section][]models.Post)
	c.tags = make(map[models.Section][]models.TagCount)
	c.docs = make(map[string]*models.Document)
}

// store runs fn under the write lock unless the cache was invalidated
// since gen was read.
func (c *Cache) store(gen uint64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		fn()
	}
}

func (c *Cache) ListPosts(section models.Section) ([]models.Post, error) {
	c.mu.RLock()
	posts, ok := c.posts[section]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return clonePosts(posts), nil
	}

	posts, err := c.src.ListPosts(section)
	if err != nil {
		return nil, err
	}
	c.store(gen, func() { c.posts[section] = posts })
	return clonePosts(posts), nil
}

func (c *Cache) ListTags(section models.Section) ([]models.TagCount, error) {
	c.mu.RLock()
	tags, ok := c.tags[section]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return slices.Clone(tags), nil
	}

	tags, err := c.src.ListTags(section)
	if err != nil {
		return nil, err
	}
	c.store(gen, func() { c.tags[section] = tags })
	return slices.Clone(tags), nil
}

func (c *Cache) ListPostsByTag(section models.Section, tag string) ([]models.Post, error) {
	posts, err := c.ListPosts(section)
	if err != nil {
		return nil, err
	}
	return FilterByTag(posts, tag), nil
}

func (c *Cache) GetPost(section models.Section, slugParts []string) (*models.Document, error) {
	key := string(section) + "\x00" + strings.Join(slugParts, "\x00")

	c.mu.RLock()
	doc, ok := c.docs[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return doc.Clone(), nil
	}

	doc, err := c.src.GetPost(section, slugParts)
	if err != nil {
		return nil, err
	}
	c.store(gen, func() { c.docs[key] = doc })
	return doc.Clone(), nil
}

func clonePosts(posts []models.Post) []models.Post {
	if posts == nil {
		return nil
	}
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}
