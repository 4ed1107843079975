/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Seednode/sketchbook/games"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	notifyChannel = "sketchbook_rooms"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	listenRetry = 2 * time.Second
)

// Postgres stores rooms and books as JSONB documents. Writes to a room or any
// of its books send a NOTIFY carrying the room code, and a single listening
// connection turns those into pushes for local subscribers, so every server
// sharing the database sees every change.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	broker
}

// NewPostgres connects, applies migrations, and starts listening for room
// changes until ctx ends.
func NewPostgres(ctx context.Context, connString string, logger zerolog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	p := &Postgres{pool: pool, log: logger}

	go p.listen(ctx)

	return p, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) CreateRoom(ctx context.Context, room games.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, "INSERT INTO rooms (room_id, doc) VALUES ($1, $2::jsonb)", room.RoomID, string(doc))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return games.ErrRoomExists
		}
		return wrap(err)
	}

	return nil
}

func (p *Postgres) GetRoom(ctx context.Context, code string) (games.Room, error) {
	return getRoom(ctx, p.pool, code, "SELECT doc FROM rooms WHERE room_id = $1")
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getRoom(ctx context.Context, q querier, code, query string) (games.Room, error) {
	var doc []byte

	err := q.QueryRow(ctx, query, code).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return games.Room{}, games.ErrRoomNotFound
		}
		return games.Room{}, wrap(err)
	}

	var room games.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return games.Room{}, wrap(err)
	}

	return room, nil
}

func (p *Postgres) UpdateRoom(ctx context.Context, code string, fn func(*games.Room) error) (games.Room, error) {
	var (
		result games.Room
		fnErr  error
	)

	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		current, err := getRoom(ctx, tx, code, "SELECT doc FROM rooms WHERE room_id = $1 FOR UPDATE")
		if err != nil {
			fnErr = err
			return err
		}

		next := current.Clone()
		if err := fn(&next); err != nil {
			if errors.Is(err, games.ErrSkipUpdate) {
				result = current
				return nil
			}
			fnErr = err
			return err
		}

		doc, err := json.Marshal(next)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, "UPDATE rooms SET doc = $2::jsonb, updated_at = now() WHERE room_id = $1", code, string(doc)); err != nil {
			return err
		}
		if err := notify(ctx, tx, code); err != nil {
			return err
		}

		result = next
		return nil
	})
	if fnErr != nil {
		return games.Room{}, fnErr
	}
	if err != nil {
		return games.Room{}, wrap(err)
	}

	return result, nil
}

func (p *Postgres) CreateBook(ctx context.Context, code string, book games.Book) error {
	if book.Pages == nil {
		book.Pages = []games.Page{}
	}

	doc, err := json.Marshal(book)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO books (room_id, owner_id, doc) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (room_id, owner_id) DO NOTHING`,
		code, book.OwnerID, string(doc))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return games.ErrRoomNotFound
		}
		return wrap(err)
	}

	return nil
}

func (p *Postgres) GetBook(ctx context.Context, code, ownerID string) (games.Book, error) {
	var doc []byte

	err := p.pool.QueryRow(ctx, "SELECT doc FROM books WHERE room_id = $1 AND owner_id = $2", code, ownerID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return games.Book{}, games.ErrBookNotFound
		}
		return games.Book{}, wrap(err)
	}

	var book games.Book
	if err := json.Unmarshal(doc, &book); err != nil {
		return games.Book{}, wrap(err)
	}

	return book, nil
}

// AppendPage appends with a single conditional UPDATE; the page count check
// in the WHERE clause is what rejects a second submission for the same slot.
func (p *Postgres) AppendPage(ctx context.Context, code, ownerID string, at int, page games.Page) error {
	doc, err := json.Marshal(page)
	if err != nil {
		return err
	}

	var sentinel error

	err = pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE books
			SET doc = jsonb_set(doc, '{pages}', COALESCE(doc->'pages', '[]'::jsonb) || jsonb_build_array($4::jsonb))
			WHERE room_id = $1 AND owner_id = $2
			  AND jsonb_array_length(COALESCE(doc->'pages', '[]'::jsonb)) = $3`,
			code, ownerID, at, string(doc))
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM books WHERE room_id = $1 AND owner_id = $2)", code, ownerID).Scan(&exists); err != nil {
				return err
			}
			if exists {
				sentinel = games.ErrStalePage
			} else {
				sentinel = games.ErrBookNotFound
			}
			return sentinel
		}

		return notify(ctx, tx, code)
	})
	if sentinel != nil {
		return sentinel
	}

	return wrap(err)
}

func (p *Postgres) SubscribeRoom(ctx context.Context, code string) (<-chan games.Room, error) {
	return p.subscribe(ctx, code, p.GetRoom)
}

func notify(ctx context.Context, tx pgx.Tx, code string) error {
	_, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, code)
	return err
}

// listen holds one pooled connection on LISTEN and republishes changed rooms
// to local subscribers, reconnecting after failures until ctx ends.
func (p *Postgres) listen(ctx context.Context) {
	for {
		err := p.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		p.log.Warn().Err(err).Dur("retry", listenRetry).Msg("room listener disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (p *Postgres) listenOnce(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), "UNLISTEN *")
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		if !p.watched(n.Payload) {
			continue
		}

		room, err := p.GetRoom(ctx, n.Payload)
		if err != nil {
			p.log.Warn().Err(err).Str("room", n.Payload).Msg("reloading notified room")
			continue
		}

		p.publish(room)
	}
}
