/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"sync"

	"github.com/Seednode/sketchbook/games"
)

type subscriber struct {
	ch        chan games.Room
	published bool
}

// broker fans room snapshots out to subscribers. Each subscriber has a single
// slot holding the newest snapshot, so a slow reader only ever misses
// intermediate values and never blocks a writer.
type broker struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// subscribe registers before calling load, so a write that lands while the
// current room is being read still reaches the subscriber. The loaded room
// only seeds the channel if no publish got there first.
func (b *broker) subscribe(ctx context.Context, code string, load func(context.Context, string) (games.Room, error)) (<-chan games.Room, error) {
	sub := &subscriber{ch: make(chan games.Room, 1)}

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[string]map[*subscriber]struct{})
	}
	if b.subs[code] == nil {
		b.subs[code] = make(map[*subscriber]struct{})
	}
	b.subs[code][sub] = struct{}{}
	b.mu.Unlock()

	room, err := load(ctx, code)
	if err != nil {
		b.mu.Lock()
		b.removeLocked(code, sub)
		b.mu.Unlock()

		return nil, err
	}

	b.mu.Lock()
	if !sub.published {
		offer(sub.ch, room.Clone())
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()

		b.mu.Lock()
		defer b.mu.Unlock()

		b.removeLocked(code, sub)
		close(sub.ch)
	}()

	return sub.ch, nil
}

func (b *broker) removeLocked(code string, sub *subscriber) {
	delete(b.subs[code], sub)
	if len(b.subs[code]) == 0 {
		delete(b.subs, code)
	}
}

func (b *broker) watched(code string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs[code]) > 0
}

func (b *broker) publish(room games.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[room.RoomID] {
		sub.published = true
		offer(sub.ch, room.Clone())
	}
}

func offer(ch chan games.Room, room games.Room) {
	select {
	case ch <- room:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- room:
	default:
	}
}
