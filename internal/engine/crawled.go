package engine

import (
	"sync"
)

// CrawledSet tracks URLs that have already been crawled. URLs are compared
// literally; nothing is ever removed.
type CrawledSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewCrawledSet creates a CrawledSet seeded with urls (typically the
// identity keys loaded from the ledger).
func NewCrawledSet(urls map[string]struct{}) *CrawledSet {
	seen := make(map[string]struct{}, len(urls))
	for u := range urls {
		seen[u] = struct{}{}
	}
	return &CrawledSet{seen: seen}
}

// Has returns true if url has been crawled.
func (s *CrawledSet) Has(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[url]
	return ok
}

// Add marks url as crawled.
func (s *CrawledSet) Add(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[url] = struct{}{}
}

// Len returns the number of crawled URLs.
func (s *CrawledSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
