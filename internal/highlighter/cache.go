package highlighter

import (
	"container/list"
	"sync"

	"findmark/internal/lang"
)

type cacheKey struct {
	Mode ContextMode
	Lang lang.ID
	Text string
	File string
	Line int
}

func cacheKeyForRequest(req Request) cacheKey {
	key := cacheKey{
		Mode: req.Mode,
		Lang: req.Lang,
		Text: req.Text,
	}
	if req.Mode == ContextFile {
		key.File = req.File
		key.Line = req.Line
	}
	return key
}

type cacheEntry struct {
	key   cacheKey
	spans []Span
}

// spanLRU is a fixed-capacity span cache safe for concurrent use.
type spanLRU struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[cacheKey]*list.Element
}

func newSpanLRU(capacity int) *spanLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &spanLRU{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[cacheKey]*list.Element, capacity),
	}
}

func (c *spanLRU) Get(key cacheKey) ([]Span, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(elem)
	return elem.Value.(cacheEntry).spans, true
}

func (c *spanLRU) Set(key cacheKey, spans []Span) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value = cacheEntry{key: key, spans: spans}
		c.ll.MoveToFront(elem)
		return
	}
	c.items[key] = c.ll.PushFront(cacheEntry{key: key, spans: spans})

	for c.ll.Len() > c.capacity {
		back := c.ll.Back()
		delete(c.items, back.Value.(cacheEntry).key)
		c.ll.Remove(back)
	}
}

func (c *spanLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
