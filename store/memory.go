/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Seednode/sketchbook/games"
)

type memoryRoom struct {
	room       games.Room
	books      map[string]games.Book
	lastActive time.Time
}

// Memory is a process-local games.Store. Every operation holds a single
// mutex, which makes UpdateRoom and AppendPage trivially atomic.
type Memory struct {
	mu    sync.RWMutex
	rooms map[string]*memoryRoom
	now   func() time.Time

	broker
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*memoryRoom),
		now:   time.Now,
	}
}

func (m *Memory) CreateRoom(ctx context.Context, room games.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[room.RoomID]; exists {
		return games.ErrRoomExists
	}

	m.rooms[room.RoomID] = &memoryRoom{
		room:       room.Clone(),
		books:      make(map[string]games.Book),
		lastActive: m.now(),
	}

	return nil
}

func (m *Memory) GetRoom(ctx context.Context, code string) (games.Room, error) {
	if err := ctx.Err(); err != nil {
		return games.Room{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, exists := m.rooms[code]
	if !exists {
		return games.Room{}, games.ErrRoomNotFound
	}

	return r.room.Clone(), nil
}

func (m *Memory) UpdateRoom(ctx context.Context, code string, fn func(*games.Room) error) (games.Room, error) {
	if err := ctx.Err(); err != nil {
		return games.Room{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.rooms[code]
	if !exists {
		return games.Room{}, games.ErrRoomNotFound
	}

	next := r.room.Clone()
	err := fn(&next)
	switch {
	case errors.Is(err, games.ErrSkipUpdate):
		return r.room.Clone(), nil
	case err != nil:
		return games.Room{}, err
	}

	r.room = next
	r.lastActive = m.now()
	m.publish(next)

	return next.Clone(), nil
}

func (m *Memory) CreateBook(ctx context.Context, code string, book games.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.rooms[code]
	if !exists {
		return games.ErrRoomNotFound
	}

	if _, exists := r.books[book.OwnerID]; exists {
		return nil
	}

	r.books[book.OwnerID] = book.Clone()
	r.lastActive = m.now()

	return nil
}

func (m *Memory) GetBook(ctx context.Context, code, ownerID string) (games.Book, error) {
	if err := ctx.Err(); err != nil {
		return games.Book{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, exists := m.rooms[code]
	if !exists {
		return games.Book{}, games.ErrRoomNotFound
	}

	book, exists := r.books[ownerID]
	if !exists {
		return games.Book{}, games.ErrBookNotFound
	}

	return book.Clone(), nil
}

func (m *Memory) AppendPage(ctx context.Context, code, ownerID string, at int, page games.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.rooms[code]
	if !exists {
		return games.ErrRoomNotFound
	}

	book, exists := r.books[ownerID]
	if !exists {
		return games.ErrBookNotFound
	}
	if len(book.Pages) != at {
		return games.ErrStalePage
	}

	book = book.Clone()
	book.Pages = append(book.Pages, page)
	r.books[ownerID] = book
	r.lastActive = m.now()
	m.publish(r.room)

	return nil
}

func (m *Memory) SubscribeRoom(ctx context.Context, code string) (<-chan games.Room, error) {
	return m.subscribe(ctx, code, m.GetRoom)
}

// Reap drops rooms idle since before cutoff, returning how many were removed.
func (m *Memory) Reap(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, r := range m.rooms {
		if r.lastActive.Before(cutoff) && !m.watched(code) {
			delete(m.rooms, code)
			removed++
		}
	}

	return removed
}

// ReapLoop calls Reap every idle/2 until ctx ends.
func (m *Memory) ReapLoop(ctx context.Context, idle time.Duration, reaped func(n int)) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Reap(m.now().Add(-idle)); n > 0 && reaped != nil {
				reaped(n)
			}
		}
	}
}
