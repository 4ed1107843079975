/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	createAttempts = 16

	// DefaultMaxImageSize bounds the length of a drawing's data URI.
	DefaultMaxImageSize = 2 << 20

	imagePrefix = "data:image/"
)

// Service holds the player actions. It keeps no game state of its own: every
// action reads from and writes to the Store.
type Service struct {
	store        Store
	log          zerolog.Logger
	now          func() time.Time
	newCode      func() (string, error)
	maxImageSize int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

func WithMaxImageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImageSize = n
		}
	}
}

func NewService(store Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:        store,
		log:          logger,
		now:          time.Now,
		newCode:      NewRoomCode,
		maxImageSize: DefaultMaxImageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot is what a subscribed client needs to render: the room and the
// task derived from it.
type Snapshot struct {
	Room Room `json:"room"`
	Task Task `json:"task"`
}

func (s *Service) CreateRoom(ctx context.Context, uid, name string) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, ErrEmptyName
	}

	for range createAttempts {
		code, err := s.newCode()
		if err != nil {
			return Room{}, err
		}

		room := NewRoom(code, Player{UID: uid, Name: name}, s.now())

		err = s.store.CreateRoom(ctx, room)
		switch {
		case err == nil:
			s.log.Info().Str("room", code).Str("uid", uid).Msg("room created")
			return room, nil
		case errors.Is(err, ErrRoomExists):
			continue
		default:
			return Room{}, err
		}
	}

	return Room{}, ErrRoomExists
}

func (s *Service) JoinRoom(ctx context.Context, code, uid, name string) (Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Room{}, ErrEmptyName
	}
	code = NormalizeCode(code)

	room, err := s.store.UpdateRoom(ctx, code, func(r *Room) error {
		changed, err := Join(r, Player{UID: uid, Name: name})
		if err != nil {
			return err
		}
		if !changed {
			return ErrSkipUpdate
		}
		return nil
	})
	if err != nil {
		return Room{}, err
	}

	s.log.Info().Str("room", code).Str("uid", uid).Int("players", len(room.Players)).Msg("player joined")

	return room, nil
}

// StartGame creates an empty book per player and moves the room to round 0.
// Books are written first so no client sees a PLAYING room without them; the
// transaction then confirms nobody joined in between. A start request that
// loses a race with another one never touches the books already in play.
func (s *Service) StartGame(ctx context.Context, code, uid string) (Room, error) {
	code = NormalizeCode(code)

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return Room{}, err
	}
	if err := CanStart(room, uid); err != nil {
		return Room{}, err
	}

	for _, p := range room.Players {
		book := Book{OwnerID: p.UID, OwnerName: p.Name, Pages: []Page{}}
		if err := s.store.CreateBook(ctx, code, book); err != nil {
			return Room{}, fmt.Errorf("creating book for %s: %w", p.UID, err)
		}
	}

	started, err := s.store.UpdateRoom(ctx, code, func(r *Room) error {
		if err := CanStart(*r, uid); err != nil {
			return err
		}
		if len(r.Players) != len(room.Players) {
			return ErrRoomChanged
		}
		Start(r)
		return nil
	})
	if err != nil {
		return Room{}, err
	}

	s.log.Info().Str("room", code).Int("players", len(started.Players)).Msg("game started")

	return started, nil
}

// CurrentTask resolves what uid has to do right now.
func (s *Service) CurrentTask(ctx context.Context, code, uid string) (Task, error) {
	room, err := s.store.GetRoom(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	return s.taskFor(ctx, room, uid)
}

func (s *Service) taskFor(ctx context.Context, room Room, uid string) (Task, error) {
	if room.Status != StatusPlaying {
		return Wait{}, nil
	}

	owner, err := HeldBook(room, uid)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, room.RoomID, owner.UID)
	if errors.Is(err, ErrBookNotFound) && room.Round == 0 {
		return SetTopic{}, nil
	}
	if err != nil {
		return nil, err
	}

	return ResolveTask(room, uid, book)
}

// Snapshot pairs a room with uid's task. Players outside the room get Wait.
func (s *Service) Snapshot(ctx context.Context, room Room, uid string) (Snapshot, error) {
	task, err := s.taskFor(ctx, room, uid)
	if errors.Is(err, ErrNotInRoom) {
		task, err = Wait{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Room: room, Task: task}, nil
}

// SubmitPage appends uid's answer to the book they currently hold, then checks
// whether the round is over. The page kind follows from the task: topics and
// guesses are words, drawings are images.
func (s *Service) SubmitPage(ctx context.Context, code, uid, content string) (Task, error) {
	code = NormalizeCode(code)

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	task, err := s.taskFor(ctx, room, uid)
	if err != nil {
		return nil, err
	}

	kind, ok := PageKindFor(task)
	if !ok {
		return nil, ErrNothingToSubmit
	}

	content, err = s.validateContent(kind, content)
	if err != nil {
		return nil, err
	}

	owner, err := HeldBook(room, uid)
	if err != nil {
		return nil, err
	}
	author := room.Players[room.PlayerIndex(uid)]

	page := Page{
		Kind:       kind,
		Content:    content,
		AuthorUID:  author.UID,
		AuthorName: author.Name,
	}
	if err := s.store.AppendPage(ctx, code, owner.UID, room.Round, page); err != nil {
		return nil, err
	}

	s.log.Debug().Str("room", code).Str("uid", uid).Str("book", owner.UID).
		Int("round", room.Round).Str("kind", string(kind)).Msg("page submitted")

	if _, err := s.checkRound(ctx, room); err != nil {
		return Wait{}, fmt.Errorf("checking round %d: %w", room.Round, err)
	}

	return Wait{}, nil
}

// CheckRound runs the completion check for the room's current round. Any
// client may call it, for example to retry after a failed submission check.
func (s *Service) CheckRound(ctx context.Context, code string) (Room, error) {
	room, err := s.store.GetRoom(ctx, NormalizeCode(code))
	if err != nil {
		return Room{}, err
	}
	if room.Status != StatusPlaying {
		return room, nil
	}
	return s.checkRound(ctx, room)
}

// checkRound advances the room once every book holds room.Round+1 pages.
// The advance re-reads the room inside the store transaction so that clients
// racing on the same round move it forward exactly once.
func (s *Service) checkRound(ctx context.Context, room Room) (Room, error) {
	books := make([]Book, 0, len(room.Players))
	for _, p := range room.Players {
		book, err := s.store.GetBook(ctx, room.RoomID, p.UID)
		if err != nil {
			return Room{}, err
		}
		books = append(books, book)
	}

	if !RoundComplete(books, room.Round) {
		return room, nil
	}

	advanced := false
	updated, err := s.store.UpdateRoom(ctx, room.RoomID, func(r *Room) error {
		advanced = Advance(r, room.Round)
		if !advanced {
			return ErrSkipUpdate
		}
		return nil
	})
	if err != nil {
		return Room{}, err
	}

	if advanced {
		ev := s.log.Info().Str("room", room.RoomID).Int("round", room.Round)
		if updated.Status == StatusFinished {
			ev.Msg("game finished")
		} else {
			ev.Int("next", updated.Round).Msg("round advanced")
		}
	}

	return updated, nil
}

// Gallery returns every book in player order once the game is over.
func (s *Service) Gallery(ctx context.Context, code string) ([]Book, error) {
	code = NormalizeCode(code)

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Status != StatusFinished {
		return nil, ErrGameNotFinished
	}

	books := make([]Book, 0, len(room.Players))
	for _, p := range room.Players {
		book, err := s.store.GetBook(ctx, code, p.UID)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, nil
}

func (s *Service) validateContent(kind PageKind, content string) (string, error) {
	content = strings.TrimSpace(content)

	switch kind {
	case PageWord:
		if content == "" {
			return "", ErrEmptyContent
		}
	case PageImage:
		if !strings.HasPrefix(content, imagePrefix) || !strings.Contains(content, ",") {
			return "", ErrInvalidImage
		}
		if len(content) > s.maxImageSize {
			return "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, s.maxImageSize)
		}
	}

	return content, nil
}

func (s *Service) Room(ctx context.Context, code string) (Room, error) {
	return s.store.GetRoom(ctx, NormalizeCode(code))
}

// Subscribe streams room updates until ctx ends.
func (s *Service) Subscribe(ctx context.Context, code string) (<-chan Room, error) {
	return s.store.SubscribeRoom(ctx, NormalizeCode(code))
}
