// Package storage keeps an archive of completed games in SQLite. The
// default data source is an in-memory database: the archive is
// queryable for the lifetime of the process, nothing more. Passing a
// file path instead is possible but not the served default.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go.uber.org/zap"
)

// MemoryDSN is the default archive location.
const MemoryDSN = "file::memory:?cache=shared"

// Store handles SQLite operations with a single async writer for game
// records and synchronous reads.
type Store struct {
	db           *sql.DB
	dsn          string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	log          *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewStore opens the archive database and starts the writer loop.
func NewStore(dsn string, log *zap.Logger) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// An in-memory database exists per connection unless shared; keep
	// a single connection so every query sees the same archive.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:        db,
		dsn:       dsn,
		writeChan: make(chan func(*sql.Tx) error, 256),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// InitDB creates the schema.
func (s *Store) InitDB() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// IsHealthy returns true if the storage is operational
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// writerLoop serializes all archive writes.
func (s *Store) writerLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes before exiting.
			for {
				select {
				case fn := <-s.writeChan:
					s.execWrite(fn)
				default:
					return
				}
			}
		case fn := <-s.writeChan:
			s.execWrite(fn)
		}
	}
}

func (s *Store) execWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.log.Error("archive write: begin failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.log.Error("archive write failed", zap.Error(err))
		return
	}
	if err := tx.Commit(); err != nil {
		s.log.Error("archive write: commit failed", zap.Error(err))
		s.healthStatus.Store(false)
		return
	}
	s.healthStatus.Store(true)
}

// RecordGame queues a completed game and its moves for archival. The
// color attached to each ply alternates from whichever side moved
// first in the game's initial position.
func (s *Store) RecordGame(rec GameRecord, moves []string) error {
	firstMover := 0
	if f := strings.Fields(rec.InitialFEN); len(f) > 1 && f[1] == "b" {
		firstMover = 1
	}

	write := func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO games (room_id, name, initial_fen, final_fen, result, plies, end_time_utc)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.RoomID, rec.Name, rec.InitialFEN, rec.FinalFEN, rec.Result, rec.Plies, rec.EndTimeUTC,
		)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		for i, uci := range moves {
			color := "w"
			if (i+firstMover)%2 == 1 {
				color = "b"
			}
			if _, err := tx.Exec(
				`INSERT INTO moves (room_id, move_number, move_uci, player_color) VALUES (?, ?, ?, ?)`,
				rec.RoomID, i+1, uci, color,
			); err != nil {
				return fmt.Errorf("insert move %d: %w", i+1, err)
			}
		}
		return nil
	}

	select {
	case s.writeChan <- write:
		return nil
	case <-s.ctx.Done():
		return fmt.Errorf("storage is shutting down")
	default:
		return fmt.Errorf("archive write queue is full")
	}
}

// ListGames returns the most recently finished games.
func (s *Store) ListGames(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id, name, initial_fen, final_fen, result, plies, end_time_utc
		 FROM games ORDER BY end_time_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var rec GameRecord
		if err := rows.Scan(&rec.RoomID, &rec.Name, &rec.InitialFEN, &rec.FinalFEN,
			&rec.Result, &rec.Plies, &rec.EndTimeUTC); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetMoves returns the archived move list for one game.
func (s *Store) GetMoves(ctx context.Context, roomID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT move_uci FROM moves WHERE room_id = ? ORDER BY move_number`, roomID)
	if err != nil {
		return nil, fmt.Errorf("get moves: %w", err)
	}
	defer rows.Close()

	var moves []string
	for rows.Next() {
		var uci string
		if err := rows.Scan(&uci); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, uci)
	}
	return moves, rows.Err()
}

// Close stops the writer and closes the database.
func (s *Store) Close() error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.log.Warn("archive writer did not drain in time")
	}

	return s.db.Close()
}
