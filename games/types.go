/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "time"

// Status is the lifecycle state of a room. Transitions only move forward:
// WAITING -> PLAYING -> FINISHED.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

const (
	MinPlayers = 3
	MaxPlayers = 8
)

// Player is a room member, in join order.
type Player struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Room is the shared per-game document.
type Room struct {
	RoomID    string    `json:"roomId"`
	HostID    string    `json:"hostId"`
	Status    Status    `json:"status"`
	Round     int       `json:"round"`
	Players   []Player  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerIndex returns the position of uid in the player list, or -1.
func (r *Room) PlayerIndex(uid string) int {
	for i, p := range r.Players {
		if p.UID == uid {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy, so snapshots handed to subscribers never alias
// store-owned slices.
func (r Room) Clone() Room {
	r.Players = append(make([]Player, 0, len(r.Players)), r.Players...)
	return r
}

type PageKind string

const (
	PageWord  PageKind = "word"
	PageImage PageKind = "image"
)

// Page is one contribution to a book: a topic, a guess, or a drawing.
type Page struct {
	Kind       PageKind `json:"type"`
	Content    string   `json:"content"`
	AuthorUID  string   `json:"authorUid"`
	AuthorName string   `json:"authorName"`
}

// Book accumulates pages for one owner. pages[0] is always the owner's topic.
type Book struct {
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
	Pages     []Page `json:"pages"`
}

func (b Book) Clone() Book {
	b.Pages = append(make([]Page, 0, len(b.Pages)), b.Pages...)
	return b
}
