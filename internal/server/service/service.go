// Package service coordinates the room registry and the archive.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chessd/internal/engine"
	"chessd/internal/server/game"
	"chessd/internal/server/storage"
)

const DefaultMaxRooms = 100

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomLimit    = errors.New("room limit reached")
)

// Service owns the map of live rooms. Rooms serialize their own moves;
// the service lock only guards the registry itself.
type Service struct {
	rooms    map[string]*game.Room
	mu       sync.RWMutex
	store    *storage.Store
	maxRooms int
	log      *zap.Logger
}

// New creates a service instance with optional archive storage.
func New(store *storage.Store, maxRooms int, log *zap.Logger) *Service {
	if maxRooms <= 0 {
		maxRooms = DefaultMaxRooms
	}
	return &Service{
		rooms:    make(map[string]*game.Room),
		store:    store,
		maxRooms: maxRooms,
		log:      log,
	}
}

// CreateRoom registers a new room. An optional FEN seeds a custom
// starting position; otherwise the canonical one is used.
func (s *Service) CreateRoom(name, fen string) (*game.Room, error) {
	state := engine.NewGame()
	if fen != "" {
		var err error
		state, err = engine.ParseFEN(fen)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rooms) >= s.maxRooms {
		return nil, fmt.Errorf("%w: %d rooms active", ErrRoomLimit, len(s.rooms))
	}

	r := game.New(uuid.New().String(), name, state)
	s.rooms[r.ID] = r
	s.log.Info("room created", zap.String("room", r.ID), zap.String("name", name))
	return r, nil
}

func (s *Service) GetRoom(id string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r, nil
}

func (s *Service) ListRooms() []*game.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*game.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

func (s *Service) DeleteRoom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	delete(s.rooms, id)
	s.log.Info("room deleted", zap.String("room", id))
	return nil
}

// ArchiveRoom records a finished game. Called by the transport once a
// terminal status has been broadcast.
func (s *Service) ArchiveRoom(r *game.Room) {
	if s.store == nil || !r.Terminal() {
		return
	}
	state := r.State()
	moves := r.Moves()
	rec := storage.GameRecord{
		RoomID:     r.ID,
		Name:       r.Name,
		InitialFEN: r.InitialFEN(),
		FinalFEN:   state.FEN(),
		Result:     state.Status.String(),
		Plies:      len(moves),
		EndTimeUTC: time.Now().UTC(),
	}
	if err := s.store.RecordGame(rec, moves); err != nil {
		s.log.Warn("failed to archive game", zap.String("room", r.ID), zap.Error(err))
	}
}

// Archive exposes the store for read endpoints; nil when disabled.
func (s *Service) Archive() *storage.Store {
	return s.store
}

// GetStorageHealth returns the archive component status.
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown drops all rooms and closes the archive.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms = make(map[string]*game.Room)
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}
