// Package game owns the per-room session state: the authoritative
// engine.GameState, the two player seats and the observer set. All
// mutation goes through the room's mutex, so move proposals for one
// room are applied strictly one at a time while independent rooms
// proceed in parallel.
package game

import (
	"errors"
	"sync"
	"time"

	"chessd/internal/engine"
	"chessd/internal/server/core"
)

// ErrNotAPlayer rejects move proposals from observer connections.
var ErrNotAPlayer = errors.New("only seated players may move")

type Role int

const (
	RoleObserver Role = iota
	RoleWhite
	RoleBlack
)

func (r Role) String() string {
	switch r {
	case RoleWhite:
		return "white"
	case RoleBlack:
		return "black"
	default:
		return "observer"
	}
}

// Room is one hosted game. The engine state is the single source of
// truth; the room never hands out references to it, only copies.
type Room struct {
	ID   string
	Name string

	mu         sync.Mutex
	state      engine.GameState
	initialFEN string
	seats      map[engine.Color]string // connection ID per color
	observers  map[string]struct{}
	moves      []string
	lastMove   string
	createdAt  time.Time
}

func New(id, name string, state engine.GameState) *Room {
	return &Room{
		ID:         id,
		Name:       name,
		state:      state,
		initialFEN: state.FEN(),
		seats:      make(map[engine.Color]string),
		observers:  make(map[string]struct{}),
		createdAt:  time.Now(),
	}
}

// InitialFEN returns the position the room was created with.
func (r *Room) InitialFEN() string {
	return r.initialFEN
}

// Join assigns a role to the connection: the first connection takes
// the white seat, the second black, everyone after that observes.
func (r *Room) Join(connID string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seats[engine.White] == "" {
		r.seats[engine.White] = connID
		return RoleWhite
	}
	if r.seats[engine.Black] == "" {
		r.seats[engine.Black] = connID
		return RoleBlack
	}
	r.observers[connID] = struct{}{}
	return RoleObserver
}

// Leave vacates whatever the connection held. There is no resume: a
// departed player's seat simply goes to the next joiner.
func (r *Room) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for color, id := range r.seats {
		if id == connID {
			r.seats[color] = ""
		}
	}
	delete(r.observers, connID)
}

// SubmitMove validates and applies one move proposal. The whole
// propose-validate-execute-evaluate cycle runs under the room lock,
// which is the single-writer discipline the engine relies on. On
// rejection the authoritative state is untouched.
func (r *Room) SubmitMove(connID, uci string) (core.RoomResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.roleOf(connID)
	if role == RoleObserver {
		return r.snapshotLocked(), ErrNotAPlayer
	}
	if r.seats[r.state.Turn] != connID {
		return r.snapshotLocked(), engine.ErrNotYourTurn
	}

	move, err := engine.ParseMove(uci)
	if err != nil {
		return r.snapshotLocked(), err
	}

	next, err := engine.AttemptMove(r.state, move)
	if err != nil {
		return r.snapshotLocked(), err
	}

	r.state = next
	r.moves = append(r.moves, move.String())
	r.lastMove = move.String()
	return r.snapshotLocked(), nil
}

func (r *Room) roleOf(connID string) Role {
	switch connID {
	case "":
		return RoleObserver
	case r.seats[engine.White]:
		return RoleWhite
	case r.seats[engine.Black]:
		return RoleBlack
	}
	return RoleObserver
}

// State returns a copy of the authoritative game state.
func (r *Room) State() engine.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Moves returns the committed move list in UCI notation.
func (r *Room) Moves() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.moves...)
}

// Terminal reports whether the game has ended.
func (r *Room) Terminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Status.Terminal()
}

// Snapshot builds the broadcast view of the room.
func (r *Room) Snapshot() core.RoomResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() core.RoomResponse {
	return core.RoomResponse{
		RoomID:    r.ID,
		Name:      r.Name,
		FEN:       r.state.FEN(),
		Turn:      r.state.Turn.String(),
		Status:    r.state.Status.String(),
		Moves:     append([]string(nil), r.moves...),
		White:     r.seats[engine.White] != "",
		Black:     r.seats[engine.Black] != "",
		Observers: len(r.observers),
		LastMove:  r.lastMove,
	}
}
