// Package seeds provides the set of listing pages a crawl starts from.
package seeds

import (
	"context"
	"strings"
)

// Source returns seed URLs, de-duplicated, in first-seen order.
type Source interface {
	Seeds(ctx context.Context) ([]string, error)
	Close() error
}

// StaticSource serves a fixed list of seeds.
type StaticSource struct {
	urls []string
}

// NewStaticSource creates a StaticSource from urls.
func NewStaticSource(urls []string) *StaticSource {
	return &StaticSource{urls: urls}
}

// Seeds implements Source.
func (s *StaticSource) Seeds(context.Context) ([]string, error) {
	set := newOrderedSet()
	set.add(s.urls...)
	return set.items, nil
}

// Close implements Source.
func (s *StaticSource) Close() error { return nil }

// orderedSet keeps the first occurrence of each non-blank URL.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(urls ...string) {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := s.seen[u]; ok {
			continue
		}
		s.seen[u] = struct{}{}
		s.items = append(s.items, u)
	}
}
