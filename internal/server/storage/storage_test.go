package storage

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// A plain :memory: DSN keeps each test's archive private; the
	// shared-cache default would leak rows between tests.
	s, err := NewStore(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return s
}

// waitForGames polls until the async writer has landed n games.
func waitForGames(t *testing.T, s *Store, n int) []GameRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recs, err := s.ListGames(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListGames: %v", err)
		}
		if len(recs) >= n {
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("archive never reached %d games", n)
	return nil
}

func TestRecordAndReadBack(t *testing.T) {
	s := newTestStore(t)

	rec := GameRecord{
		RoomID:     "room-1",
		Name:       "friendly",
		InitialFEN: "start",
		FinalFEN:   "end",
		Result:     "checkmate",
		Plies:      4,
		EndTimeUTC: time.Now().UTC(),
	}
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	if err := s.RecordGame(rec, moves); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}

	recs := waitForGames(t, s, 1)
	got := recs[0]
	if got.RoomID != rec.RoomID || got.Result != rec.Result || got.Plies != rec.Plies {
		t.Errorf("read back %+v, want %+v", got, rec)
	}

	stored, err := s.GetMoves(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("GetMoves: %v", err)
	}
	if len(stored) != len(moves) {
		t.Fatalf("stored %d moves, want %d", len(stored), len(moves))
	}
	for i := range moves {
		if stored[i] != moves[i] {
			t.Errorf("move %d = %q, want %q", i, stored[i], moves[i])
		}
	}
}

func TestRecordGameIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	rec := GameRecord{RoomID: "room-1", Result: "stalemate", EndTimeUTC: time.Now().UTC()}
	if err := s.RecordGame(rec, nil); err != nil {
		t.Fatalf("first RecordGame: %v", err)
	}
	waitForGames(t, s, 1)

	// Re-archiving the same room must replace, not duplicate.
	rec.Result = "checkmate"
	if err := s.RecordGame(rec, nil); err != nil {
		t.Fatalf("second RecordGame: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recs, err := s.ListGames(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListGames: %v", err)
		}
		if len(recs) == 1 && recs[0].Result == "checkmate" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("replacement write never landed")
}

func TestMoveColorsFollowFirstMover(t *testing.T) {
	s := newTestStore(t)

	// A game started from a black-to-move position: the first archived
	// ply belongs to Black.
	rec := GameRecord{
		RoomID:     "room-1",
		InitialFEN: "4k3/4Q3/8/8/8/8/8/4K3 b - - 0 1",
		Result:     "checkmate",
		Plies:      2,
		EndTimeUTC: time.Now().UTC(),
	}
	if err := s.RecordGame(rec, []string{"e8e7", "e1e2"}); err != nil {
		t.Fatalf("RecordGame: %v", err)
	}
	waitForGames(t, s, 1)

	rows, err := s.db.Query(`SELECT player_color FROM moves WHERE room_id = ? ORDER BY move_number`, "room-1")
	if err != nil {
		t.Fatalf("query moves: %v", err)
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			t.Fatalf("scan: %v", err)
		}
		colors = append(colors, c)
	}
	if len(colors) != 2 || colors[0] != "b" || colors[1] != "w" {
		t.Errorf("player colors = %v, want [b w]", colors)
	}
}

func TestGetMovesUnknownRoom(t *testing.T) {
	s := newTestStore(t)

	moves, err := s.GetMoves(context.Background(), "no-such-room")
	if err != nil {
		t.Fatalf("GetMoves: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("unknown room returned %v", moves)
	}
}

func TestHealthStartsTrue(t *testing.T) {
	s := newTestStore(t)
	if !s.IsHealthy() {
		t.Error("fresh store reports unhealthy")
	}
}
