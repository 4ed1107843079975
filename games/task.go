/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"encoding/json"
	"fmt"
)

// Task is the work currently owed by a player. It is derived from room and
// book snapshots and never stored. Implementations: Wait, SetTopic, Draw and
// Guess.
type Task interface {
	isTask()
}

// Wait means the player has nothing to do until the round advances.
type Wait struct{}

// SetTopic asks the player to write the topic of their own, still empty, book.
type SetTopic struct{}

// Handoff describes the book a Draw or Guess acts on.
type Handoff struct {
	Prompt  string
	Owner   Player
	OwnBook bool
	Round   int
}

// Draw asks the player to illustrate the previous word page.
type Draw struct{ Handoff }

// Guess asks the player to put the previous drawing into words.
type Guess struct{ Handoff }

func (Wait) isTask()     {}
func (SetTopic) isTask() {}
func (Draw) isTask()     {}
func (Guess) isTask()    {}

// PageKindFor returns the kind of page a task produces, and false for Wait.
func PageKindFor(t Task) (PageKind, bool) {
	switch t.(type) {
	case SetTopic, Guess:
		return PageWord, true
	case Draw:
		return PageImage, true
	case Wait:
		return "", false
	default:
		panic(fmt.Sprintf("games: unknown task %T", t))
	}
}

type taskJSON struct {
	Type        string `json:"type"`
	PrevContent string `json:"prevContent,omitempty"`
	OwnerID     string `json:"bookOwnerId,omitempty"`
	OwnerName   string `json:"bookOwnerName,omitempty"`
	OwnBook     bool   `json:"isMyOwnBook,omitempty"`
	Round       int    `json:"roundIndex,omitempty"`
}

func handoffJSON(kind string, h Handoff) taskJSON {
	return taskJSON{
		Type:        kind,
		PrevContent: h.Prompt,
		OwnerID:     h.Owner.UID,
		OwnerName:   h.Owner.Name,
		OwnBook:     h.OwnBook,
		Round:       h.Round,
	}
}

func (Wait) MarshalJSON() ([]byte, error)     { return json.Marshal(taskJSON{Type: "wait"}) }
func (SetTopic) MarshalJSON() ([]byte, error) { return json.Marshal(taskJSON{Type: "word_init"}) }
func (d Draw) MarshalJSON() ([]byte, error)   { return json.Marshal(handoffJSON("draw", d.Handoff)) }
func (g Guess) MarshalJSON() ([]byte, error)  { return json.Marshal(handoffJSON("guess", g.Handoff)) }
