/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"strings"
	"time"
)

// NewRoom returns a WAITING room whose only player is its host.
func NewRoom(code string, host Player, now time.Time) Room {
	return Room{
		RoomID:    code,
		HostID:    host.UID,
		Status:    StatusWaiting,
		Round:     0,
		Players:   []Player{host},
		CreatedAt: now,
	}
}

// NormalizeCode trims and upper-cases a user supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Join adds p to the room. Joining twice with the same uid is a no-op, so a
// reloaded page can safely rejoin. It reports whether the room changed.
func Join(r *Room, p Player) (bool, error) {
	if r.Status != StatusWaiting {
		return false, ErrAlreadyStarted
	}
	if r.PlayerIndex(p.UID) >= 0 {
		return false, nil
	}
	if len(r.Players) >= MaxPlayers {
		return false, ErrRoomFull
	}

	r.Players = append(r.Players, p)

	return true, nil
}

// CanStart checks the start-game preconditions for the player uid.
func CanStart(r Room, uid string) error {
	switch {
	case r.Status != StatusWaiting:
		return ErrAlreadyStarted
	case r.HostID != uid:
		return ErrNotHost
	case len(r.Players) < MinPlayers:
		return ErrTooFewPlayers
	case len(r.Players) > MaxPlayers:
		return ErrTooManyPlayers
	}
	return nil
}

// Start moves a room into its first round. Callers check CanStart first.
func Start(r *Room) {
	r.Status = StatusPlaying
	r.Round = 0
}

// RoundComplete reports whether every book has exactly round+1 pages.
func RoundComplete(books []Book, round int) bool {
	if len(books) == 0 {
		return false
	}
	for _, b := range books {
		if len(b.Pages) != round+1 {
			return false
		}
	}
	return true
}

// Advance moves a PLAYING room past round, either to the next round or to
// FINISHED once every book has gone a full lap. It does nothing, and returns
// false, when the room is no longer on that round.
func Advance(r *Room, round int) bool {
	if r.Status != StatusPlaying || r.Round != round {
		return false
	}
	if finishesAfter(round, len(r.Players)) {
		r.Status = StatusFinished
		return true
	}
	r.Round = round + 1
	return true
}

// HeldBook returns the player whose book uid must act on in the room's
// current round.
func HeldBook(r Room, uid string) (Player, error) {
	idx := r.PlayerIndex(uid)
	if idx < 0 {
		return Player{}, ErrNotInRoom
	}
	return r.Players[OwnerIndex(idx, r.Round, len(r.Players))], nil
}

// ResolveTask derives uid's task from a room snapshot and the snapshot of the
// book returned by HeldBook.
func ResolveTask(r Room, uid string, book Book) (Task, error) {
	if r.Status != StatusPlaying {
		return Wait{}, nil
	}
	owner, err := HeldBook(r, uid)
	if err != nil {
		return nil, err
	}

	round := r.Round
	pages := len(book.Pages)

	switch {
	case pages > round:
		return Wait{}, nil
	case round == 0:
		return SetTopic{}, nil
	case pages < round:
		// previous round's page not visible yet
		return Wait{}, nil
	}

	h := Handoff{
		Prompt:  book.Pages[round-1].Content,
		Owner:   owner,
		OwnBook: owner.UID == uid,
		Round:   round,
	}
	if book.Pages[round-1].Kind == PageImage {
		return Guess{h}, nil
	}
	return Draw{h}, nil
}
