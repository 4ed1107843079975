/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomWith(n int) Room {
	r := NewRoom("ABC123", Player{UID: "p0", Name: "Player 0"}, time.Unix(0, 0))
	for i := 1; i < n; i++ {
		r.Players = append(r.Players, Player{UID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)})
	}
	return r
}

func wordPage(content string) Page  { return Page{Kind: PageWord, Content: content} }
func imagePage(content string) Page { return Page{Kind: PageImage, Content: content} }

func TestNewRoom(t *testing.T) {
	r := NewRoom("ABC123", Player{UID: "host", Name: "Host"}, time.Unix(10, 0))

	assert.Equal(t, "host", r.HostID)
	assert.Equal(t, StatusWaiting, r.Status)
	assert.Equal(t, 0, r.Round)
	assert.Equal(t, []Player{{UID: "host", Name: "Host"}}, r.Players)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeCode("  abc123 "))
}

func TestJoin(t *testing.T) {
	t.Run("appends in order", func(t *testing.T) {
		r := roomWith(1)
		changed, err := Join(&r, Player{UID: "p1", Name: "B"})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, r.PlayerIndex("p1"))
	})

	t.Run("rejoin is a no-op", func(t *testing.T) {
		r := roomWith(2)
		changed, err := Join(&r, Player{UID: "p1", Name: "Renamed"})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Len(t, r.Players, 2)
		assert.Equal(t, "Player 1", r.Players[1].Name)
	})

	t.Run("full room", func(t *testing.T) {
		r := roomWith(MaxPlayers)
		_, err := Join(&r, Player{UID: "late", Name: "Late"})
		assert.ErrorIs(t, err, ErrRoomFull)
	})

	t.Run("started room", func(t *testing.T) {
		r := roomWith(3)
		Start(&r)
		_, err := Join(&r, Player{UID: "late", Name: "Late"})
		assert.ErrorIs(t, err, ErrAlreadyStarted)
	})
}

func TestCanStart(t *testing.T) {
	tests := []struct {
		name string
		room func() Room
		uid  string
		want error
	}{
		{"ok", func() Room { return roomWith(3) }, "p0", nil},
		{"not host", func() Room { return roomWith(3) }, "p1", ErrNotHost},
		{"too few", func() Room { return roomWith(2) }, "p0", ErrTooFewPlayers},
		{"too many", func() Room { return roomWith(MaxPlayers + 1) }, "p0", ErrTooManyPlayers},
		{"already started", func() Room { r := roomWith(3); Start(&r); return r }, "p0", ErrAlreadyStarted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanStart(tt.room(), tt.uid)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRoundComplete(t *testing.T) {
	two := Book{Pages: []Page{wordPage("a"), imagePage("b")}}
	one := Book{Pages: []Page{wordPage("a")}}
	three := Book{Pages: []Page{wordPage("a"), imagePage("b"), wordPage("c")}}

	assert.True(t, RoundComplete([]Book{two, two, two}, 1))
	assert.False(t, RoundComplete([]Book{two, one, two}, 1))
	assert.False(t, RoundComplete([]Book{two, three, two}, 1), "over-full books do not count")
	assert.False(t, RoundComplete(nil, 0))
}

func TestAdvance(t *testing.T) {
	t.Run("moves to next round", func(t *testing.T) {
		r := roomWith(3)
		Start(&r)
		assert.True(t, Advance(&r, 0))
		assert.Equal(t, 1, r.Round)
		assert.Equal(t, StatusPlaying, r.Status)
	})

	t.Run("stale round is ignored", func(t *testing.T) {
		r := roomWith(3)
		Start(&r)
		r.Round = 1
		assert.False(t, Advance(&r, 0))
		assert.Equal(t, 1, r.Round)
	})

	t.Run("finishes after last round", func(t *testing.T) {
		for n := MinPlayers; n <= MaxPlayers; n++ {
			r := roomWith(n)
			Start(&r)
			for round := 0; round < LastRound(n); round++ {
				require.True(t, Advance(&r, round))
				require.Equal(t, StatusPlaying, r.Status, "players=%d round=%d", n, round)
			}
			require.True(t, Advance(&r, LastRound(n)))
			assert.Equal(t, StatusFinished, r.Status, "players=%d", n)
			assert.Equal(t, LastRound(n), r.Round, "round stays on the last one played")
			assert.False(t, Advance(&r, LastRound(n)), "finished rooms never advance")
		}
	})

	t.Run("waiting room", func(t *testing.T) {
		r := roomWith(3)
		assert.False(t, Advance(&r, 0))
	})
}

func TestResolveTask(t *testing.T) {
	playing := func(n, round int) Room {
		r := roomWith(n)
		Start(&r)
		r.Round = round
		return r
	}

	t.Run("waiting room", func(t *testing.T) {
		task, err := ResolveTask(roomWith(3), "p0", Book{})
		require.NoError(t, err)
		assert.Equal(t, Wait{}, task)
	})

	t.Run("not in room", func(t *testing.T) {
		_, err := ResolveTask(playing(3, 0), "stranger", Book{})
		assert.ErrorIs(t, err, ErrNotInRoom)
	})

	t.Run("round zero empty book", func(t *testing.T) {
		task, err := ResolveTask(playing(3, 0), "p1", Book{OwnerID: "p1"})
		require.NoError(t, err)
		assert.Equal(t, SetTopic{}, task)
	})

	t.Run("round zero already written", func(t *testing.T) {
		task, err := ResolveTask(playing(3, 0), "p1", Book{OwnerID: "p1", Pages: []Page{wordPage("cat")}})
		require.NoError(t, err)
		assert.Equal(t, Wait{}, task)
	})

	t.Run("draw after word", func(t *testing.T) {
		r := playing(3, 1)
		// p0 holds p2's book in round 1.
		book := Book{OwnerID: "p2", Pages: []Page{wordPage("cat")}}
		task, err := ResolveTask(r, "p0", book)
		require.NoError(t, err)
		assert.Equal(t, Draw{Handoff{
			Prompt: "cat",
			Owner:  Player{UID: "p2", Name: "Player 2"},
			Round:  1,
		}}, task)
	})

	t.Run("guess after image", func(t *testing.T) {
		r := playing(3, 2)
		book := Book{OwnerID: "p1", Pages: []Page{wordPage("cat"), imagePage("data:image/jpeg;base64,AA")}}
		task, err := ResolveTask(r, "p0", book)
		require.NoError(t, err)
		guess, ok := task.(Guess)
		require.True(t, ok, "got %T", task)
		assert.Equal(t, "data:image/jpeg;base64,AA", guess.Prompt)
		assert.Equal(t, "p1", guess.Owner.UID)
	})

	t.Run("own book with even players", func(t *testing.T) {
		r := playing(4, 1)
		book := Book{OwnerID: "p2", Pages: []Page{wordPage("dog")}}
		task, err := ResolveTask(r, "p2", book)
		require.NoError(t, err)
		draw, ok := task.(Draw)
		require.True(t, ok, "got %T", task)
		assert.True(t, draw.OwnBook)
	})

	t.Run("previous page not visible yet", func(t *testing.T) {
		task, err := ResolveTask(playing(3, 2), "p0", Book{OwnerID: "p1", Pages: []Page{wordPage("cat")}})
		require.NoError(t, err)
		assert.Equal(t, Wait{}, task)
	})

	t.Run("already submitted", func(t *testing.T) {
		book := Book{OwnerID: "p2", Pages: []Page{wordPage("cat"), imagePage("data:image/png;base64,AA")}}
		task, err := ResolveTask(playing(3, 1), "p0", book)
		require.NoError(t, err)
		assert.Equal(t, Wait{}, task)
	})
}

func TestPageKindFor(t *testing.T) {
	kind, ok := PageKindFor(SetTopic{})
	assert.True(t, ok)
	assert.Equal(t, PageWord, kind)

	kind, ok = PageKindFor(Draw{})
	assert.True(t, ok)
	assert.Equal(t, PageImage, kind)

	kind, ok = PageKindFor(Guess{})
	assert.True(t, ok)
	assert.Equal(t, PageWord, kind)

	_, ok = PageKindFor(Wait{})
	assert.False(t, ok)
}

func TestTaskJSON(t *testing.T) {
	data, err := json.Marshal(Guess{Handoff{
		Prompt:  "data:image/jpeg;base64,AA",
		Owner:   Player{UID: "p1", Name: "Ann"},
		OwnBook: false,
		Round:   2,
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "guess",
		"prevContent": "data:image/jpeg;base64,AA",
		"bookOwnerId": "p1",
		"bookOwnerName": "Ann",
		"roundIndex": 2
	}`, string(data))

	data, err = json.Marshal(Snapshot{Room: roomWith(3), Task: SetTopic{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task":{"type":"word_init"}`)
}

func TestRoomCode(t *testing.T) {
	for range 100 {
		code, err := NewRoomCode()
		require.NoError(t, err)
		assert.True(t, ValidCode(code), code)
	}

	assert.False(t, ValidCode("abc123"))
	assert.False(t, ValidCode("ABC12"))
	assert.False(t, ValidCode("ABC12!"))
}

func TestRoomClone(t *testing.T) {
	r := roomWith(3)
	c := r.Clone()
	c.Players[0].Name = "changed"
	assert.Equal(t, "Player 0", r.Players[0].Name)

	data, err := json.Marshal(Room{}.Clone())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"players":[]`)
}
