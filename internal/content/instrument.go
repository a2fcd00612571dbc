package content

import (
	"time"

	"github.com/starford/worklog/internal/models"
)

// Observer receives the outcome of every query.
type Observer interface {
	ObserveQuery(op string, section models.Section, d time.Duration, err error)
}

// Instrumented reports each query of a Source to an Observer.
type Instrumented struct {
	src Source
	obs Observer
}

var _ Source = (*Instrumented)(nil)

// Instrument wraps src. A nil observer returns src unchanged.
func Instrument(src Source, obs Observer) Source {
	if obs == nil {
		return src
	}
	return &Instrumented{src: src, obs: obs}
}

func (i *Instrumented) ListPosts(section models.Section) ([]models.Post, error) {
	start := time.Now()
	posts, err := i.src.ListPosts(section)
	i.obs.ObserveQuery("list_posts", section, time.Since(start), err)
	return posts, err
}

func (i *Instrumented) ListTags(section models.Section) ([]models.TagCount, error) {
	start := time.Now()
	tags, err := i.src.ListTags(section)
	i.obs.ObserveQuery("list_tags", section, time.Since(start), err)
	return tags, err
}

func (i *Instrumented) ListPostsByTag(section models.Section, tag string) ([]models.Post, error) {
	start := time.Now()
	posts, err := i.src.ListPostsByTag(section, tag)
	i.obs.ObserveQuery("list_posts_by_tag", section, time.Since(start), err)
	return posts, err
}

func (i *Instrumented) GetPost(section models.Section, slugParts []string) (*models.Document, error) {
	start := time.Now()
	doc, err := i.src.GetPost(section, slugParts)
	i.obs.ObserveQuery("get_post", section, time.Since(start), err)
	return doc, err
}
