/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"context"
	"errors"
)

// ErrSkipUpdate may be returned by an UpdateRoom callback to end the
// transaction without writing anything.
var ErrSkipUpdate = errors.New("skip update")

// Store is the shared document store that every client reads and writes.
// Rooms are keyed by room code, books by room code and owner uid.
type Store interface {
	// CreateRoom stores a new room, failing with ErrRoomExists if the code is taken.
	CreateRoom(ctx context.Context, room Room) error
	// GetRoom fails with ErrRoomNotFound.
	GetRoom(ctx context.Context, code string) (Room, error)
	// UpdateRoom runs fn against the current room inside a transaction and
	// stores the result unless fn fails. The room as stored afterwards is
	// returned.
	UpdateRoom(ctx context.Context, code string, fn func(*Room) error) (Room, error)

	// CreateBook stores book unless its owner already has one in the room, in
	// which case the existing book and its pages are left untouched.
	CreateBook(ctx context.Context, code string, book Book) error
	// GetBook fails with ErrBookNotFound.
	GetBook(ctx context.Context, code, ownerID string) (Book, error)
	// AppendPage appends page to a book only if it currently holds exactly
	// at pages, failing with ErrStalePage otherwise.
	AppendPage(ctx context.Context, code, ownerID string, at int, page Page) error

	// SubscribeRoom pushes the latest room value after every write to the
	// room or one of its books, starting with the current value. The channel
	// is closed when ctx ends.
	SubscribeRoom(ctx context.Context, code string) (<-chan Room, error)
}
