package main

import (
	"strconv"
	"sync"
	"time"
)

// item is the resource served by the demo views.
type item struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// createItemRequest is the body of POST /api/items.
type createItemRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=64"`
	Image string `json:"image" validate:"omitempty,max=128"`
}

// itemStore is an in-memory item collection.
type itemStore struct {
	mu     sync.RWMutex
	items  []item
	nextID int
}

func newItemStore() *itemStore {
	s := &itemStore{nextID: 1}
	now := time.Now().UTC()
	for _, name := range []string{"anvil", "bellows", "chisel", "drill", "easel"} {
		s.items = append(s.items, item{ID: s.nextID, Name: name, Image: name + ".png", CreatedAt: now})
		s.nextID++
	}
	return s
}

func (s *itemStore) list() []item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *itemStore) get(id string) (item, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return item{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == n {
			return it, true
		}
	}
	return item{}, false
}

func (s *itemStore) create(name, image string) item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := item{ID: s.nextID, Name: name, Image: image, CreatedAt: time.Now().UTC()}
	s.nextID++
	s.items = append(s.items, it)
	return it
}
