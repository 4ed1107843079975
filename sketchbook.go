// Sketchbook
//
// Every player writes a topic into their own sketchbook. Books then travel
// around the table: the next player draws the topic, the one after guesses
// the drawing, and so on, until each book has gone a full lap. At the end
// every book is shown from start to finish.
//
// Features:
// - Rooms addressed by 6-character codes, shareable as /play?room=CODE or QR
// - 3-8 players; the room creator is the host and starts the game
// - Anonymous players identified by a signed session token cookie
// - Room changes pushed to every player over /api/rooms/:room/ws
// - Rooms kept in memory, or in postgres with --database-url

package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/Seednode/sketchbook/games"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type sketchbook struct {
	cfg     *Config
	games   *games.Service
	ids     *identity
	limiter *actionLimiter
}

func newSketchbook(cfg *Config, svc *games.Service, ids *identity, limiter *actionLimiter) *sketchbook {
	return &sketchbook{
		cfg:     cfg,
		games:   svc,
		ids:     ids,
		limiter: limiter,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type pageRequest struct {
	Content string `json:"content"`
}

type roomResponse struct {
	games.Room
	Link string `json:"link"`
}

// player authenticates the request, writing a 401 when that fails.
func (sb *sketchbook) player(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, err := sb.ids.player(r)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return "", false
	}
	return uid, true
}

// actor is player plus the per-player rate limit, for requests that write.
func (sb *sketchbook) actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := sb.player(w, r)
	if !ok {
		return "", false
	}
	if !sb.limiter.allow(uid) {
		writeError(sb.cfg, w, r, errRateLimited)
		return "", false
	}
	return uid, true
}

func roomCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params, cfg *Config) (string, bool) {
	code := games.NormalizeCode(ps.ByName("room"))
	if !games.ValidCode(code) {
		writeError(cfg, w, r, errInvalidRoomCode)
		return "", false
	}
	return code, true
}

func (sb *sketchbook) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, int64(sb.cfg.maxImageSize)+4096)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(sb.cfg, w, r, errBadRequest)
		return false
	}
	return true
}

// shareLink builds the URL that drops a visitor straight into the join form.
func shareLink(cfg *Config, r *http.Request, code string) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/play",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}

	return u.String()
}

func (sb *sketchbook) withLink(r *http.Request, room games.Room) roomResponse {
	return roomResponse{Room: room, Link: shareLink(sb.cfg, r, room.RoomID)}
}

func (sb *sketchbook) serveSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, token, err := sb.ids.signIn(w, r, sb.cfg.scheme() == "https")
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"uid": uid, "token": token})
}

func (sb *sketchbook) serveTopic(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"topic": games.RandomTopic()})
}

func (sb *sketchbook) serveCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, ok := sb.actor(w, r)
	if !ok {
		return
	}

	var req nameRequest
	if !sb.decode(w, r, &req) {
		return
	}

	room, err := sb.games.CreateRoom(r.Context(), uid, req.Name)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	logf(sb.cfg, "GAMES", "Created room %s for %s", room.RoomID, realIP(r))

	writeJSON(w, http.StatusCreated, sb.withLink(r, room))
}

func (sb *sketchbook) serveRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	room, err := sb.games.Room(r.Context(), code)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sb.withLink(r, room))
}

func (sb *sketchbook) serveJoin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid, ok := sb.actor(w, r)
	if !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	var req nameRequest
	if !sb.decode(w, r, &req) {
		return
	}

	room, err := sb.games.JoinRoom(r.Context(), code, uid, req.Name)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sb.withLink(r, room))
}

func (sb *sketchbook) serveStart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid, ok := sb.actor(w, r)
	if !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	room, err := sb.games.StartGame(r.Context(), code, uid)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sb.withLink(r, room))
}

func (sb *sketchbook) serveTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid, ok := sb.player(w, r)
	if !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	task, err := sb.games.CurrentTask(r.Context(), code, uid)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (sb *sketchbook) serveSubmit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid, ok := sb.actor(w, r)
	if !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	var req pageRequest
	if !sb.decode(w, r, &req) {
		return
	}

	task, err := sb.games.SubmitPage(r.Context(), code, uid, req.Content)
	switch {
	case err != nil && task == nil:
		writeError(sb.cfg, w, r, err)
		return
	case err != nil:
		// The page is stored; only the round check failed and can be retried.
		sb.cfg.log.Warn().Err(err).Str("room", code).Str("uid", uid).Msg("round check failed after submit")
		writeJSON(w, http.StatusAccepted, task)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (sb *sketchbook) serveCheck(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := sb.actor(w, r); !ok {
		return
	}
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	room, err := sb.games.CheckRound(r.Context(), code)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sb.withLink(r, room))
}

func (sb *sketchbook) serveBooks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	books, err := sb.games.Gallery(r.Context(), code)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (sb *sketchbook) serveLink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": shareLink(sb.cfg, r, code)})
}

// serveQR renders the share link as a PNG, for players across the room.
func (sb *sketchbook) serveQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code, ok := roomCode(w, r, ps, sb.cfg)
	if !ok {
		return
	}

	png, err := qrcode.Encode(shareLink(sb.cfg, r, code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(sb.cfg, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	securityHeaders(sb.cfg, w)

	_, _ = w.Write(png)
}

// registerSketchbook sets up routes so that:
//   - /play                       → HTML client (?room=CODE pre-fills the join form)
//   - /api/session                → anonymous sign-in
//   - /api/rooms[/:room/...]      → room actions, task, gallery, share link and QR
//   - /api/rooms/:room/ws         → WebSocket pushing room snapshots
func registerSketchbook(cfg *Config, mux *httprouter.Router, sb *sketchbook, errs chan<- error) {
	p := cfg.prefix

	mux.GET(p+"/play", serveAsset(cfg, "index.html", errs))
	mux.GET(p+"/assets/sketchbook/app.css", serveAsset(cfg, "app.css", errs))
	mux.GET(p+"/assets/sketchbook/app.js", serveAsset(cfg, "app.js", errs))

	mux.POST(p+"/api/session", sb.serveSession)
	mux.GET(p+"/api/topic", sb.serveTopic)

	mux.POST(p+"/api/rooms", sb.serveCreateRoom)
	mux.GET(p+"/api/rooms/:room", sb.serveRoom)
	mux.POST(p+"/api/rooms/:room/join", sb.serveJoin)
	mux.POST(p+"/api/rooms/:room/start", sb.serveStart)
	mux.GET(p+"/api/rooms/:room/task", sb.serveTask)
	mux.POST(p+"/api/rooms/:room/pages", sb.serveSubmit)
	mux.POST(p+"/api/rooms/:room/check", sb.serveCheck)
	mux.GET(p+"/api/rooms/:room/books", sb.serveBooks)
	mux.GET(p+"/api/rooms/:room/link", sb.serveLink)
	mux.GET(p+"/api/rooms/:room/qr", sb.serveQR)
	mux.GET(p+"/api/rooms/:room/ws", sb.serveSocket)
}
