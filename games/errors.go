/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomExists     = errors.New("room already exists")
	ErrAlreadyStarted = errors.New("game has already started")
	ErrRoomFull       = errors.New("room is full (8 players max)")
	ErrRoomChanged    = errors.New("room changed while starting, try again")
)

var (
	ErrEmptyName    = errors.New("name is required")
	ErrEmptyContent = errors.New("content is required")
	ErrInvalidImage = errors.New("drawing is not a valid image")
)

var (
	ErrNotHost         = errors.New("only the host can start the game")
	ErrTooFewPlayers   = errors.New("at least 3 players are needed to start")
	ErrTooManyPlayers  = errors.New("at most 8 players can play")
	ErrNotInRoom       = errors.New("player is not in this room")
	ErrNothingToSubmit = errors.New("nothing to submit this round")
	ErrStalePage       = errors.New("page was already submitted")
	ErrBookNotFound    = errors.New("book not found")
	ErrGameNotFinished = errors.New("game is not finished yet")
)
