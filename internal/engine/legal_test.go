package engine

import (
	"errors"
	"testing"
)

func mustParseFEN(t *testing.T, fen string) GameState {
	t.Helper()
	s, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return s
}

func mustMove(t *testing.T, s GameState, uci string) GameState {
	t.Helper()
	m, err := ParseMove(uci)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", uci, err)
	}
	next, err := AttemptMove(s, m)
	if err != nil {
		t.Fatalf("AttemptMove(%q): %v", uci, err)
	}
	return next
}

func rejectMove(t *testing.T, s GameState, uci string, want error) GameState {
	t.Helper()
	m, err := ParseMove(uci)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", uci, err)
	}
	got, err := AttemptMove(s, m)
	if err == nil {
		t.Fatalf("AttemptMove(%q): expected rejection, got none", uci)
	}
	if want != nil && !errors.Is(err, want) {
		t.Fatalf("AttemptMove(%q): got %v, want %v", uci, err, want)
	}
	if got.FEN() != s.FEN() || len(got.History) != len(s.History) {
		t.Fatalf("AttemptMove(%q): rejected move mutated state", uci)
	}
	return got
}

func TestStartingFENRoundTrip(t *testing.T) {
	s := NewGame()
	if s.FEN() != StartingFEN {
		t.Fatalf("NewGame FEN = %q, want %q", s.FEN(), StartingFEN)
	}
	parsed := mustParseFEN(t, StartingFEN)
	if parsed.FEN() != StartingFEN {
		t.Fatalf("round trip FEN = %q", parsed.FEN())
	}
}

func TestParseFENRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -", // 5 fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",      // 7 ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w ZZ - 0 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",                    // no kings
		"kk6/8/8/8/8/8/8/K7 w - - 0 1",                 // two black kings
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // 9 files
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q): expected error", fen)
		}
	}
}

func TestParseFENRejectsCapturableKing(t *testing.T) {
	// The black king is en prise with White to move; such a position
	// cannot arise in play and would let e7e8 remove the king.
	if _, err := ParseFEN("4k3/4Q3/8/8/8/8/8/4K3 w - - 0 1"); err == nil {
		t.Fatal("ParseFEN accepted a position with the opposing king in check")
	}

	// The same placement with Black to move is an ordinary check.
	s := mustParseFEN(t, "4k3/4Q3/8/8/8/8/8/4K3 b - - 0 1")
	if s.Status != StatusCheck {
		t.Fatalf("status = %s, want check", s.Status)
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if m.From != (Square{File: 4, Rank: 1}) || m.To != (Square{File: 4, Rank: 3}) {
		t.Fatalf("ParseMove(e2e4) = %+v", m)
	}
	if m, _ := ParseMove("a7a8n"); m.Promotion != Knight {
		t.Fatalf("ParseMove(a7a8n) promotion = %v", m.Promotion)
	}
	for _, bad := range []string{"", "e2", "e2e9", "i2i4", "e7e8x", "e2e4qq"} {
		if _, err := ParseMove(bad); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("ParseMove(%q): got %v, want ErrMalformedInput", bad, err)
		}
	}
}

func TestPathClear(t *testing.T) {
	s := NewGame()
	// a1 rook to a3: a2 pawn blocks.
	if pathClear(s.Board, Square{0, 0}, Square{0, 2}) {
		t.Error("a1-a3 should be blocked by the a2 pawn")
	}
	// a4-h4 along the empty fourth rank.
	if !pathClear(s.Board, Square{0, 3}, Square{7, 3}) {
		t.Error("a4-h4 should be clear")
	}
	// Adjacent squares have an empty in-between set.
	if !pathClear(s.Board, Square{0, 0}, Square{1, 1}) {
		t.Error("adjacent diagonal should be trivially clear")
	}
}

func TestSquareAttacked(t *testing.T) {
	s := NewGame()
	cases := []struct {
		square string
		by     Color
		want   bool
	}{
		{"e3", White, true},  // d2/f2 pawns
		{"f3", White, true},  // g1 knight and pawns
		{"e4", White, false}, // out of reach from the start
		{"e6", Black, true},
		{"e5", Black, false},
		{"f2", Black, false}, // blocked sliders can't see through
	}
	for _, c := range cases {
		sq, _ := ParseSquare(c.square)
		if got := squareAttacked(s.Board, sq, c.by); got != c.want {
			t.Errorf("squareAttacked(%s, %s) = %v, want %v", c.square, c.by, got, c.want)
		}
	}
}

func TestPieceMovementPatterns(t *testing.T) {
	s := NewGame()
	legal := []string{"e2e4", "e2e3", "g1f3", "b1c3"}
	for _, uci := range legal {
		m, _ := ParseMove(uci)
		if !s.legalMove(m) {
			t.Errorf("%s should be legal from the start", uci)
		}
	}
	illegal := []string{
		"e2e5", // pawn triple step
		"e2d3", // pawn diagonal without capture
		"d1d3", // queen through own pawn
		"f1c4", // bishop through own pawn
		"a1a3", // rook through own pawn
		"e1e2", // king onto own pawn
		"g1e2", // knight onto own pawn
		"g1g3", // knight moving like a rook
	}
	for _, uci := range illegal {
		m, _ := ParseMove(uci)
		if s.legalMove(m) {
			t.Errorf("%s should be illegal from the start", uci)
		}
	}
}

func TestPawnDoubleStepNeedsBothSquaresEmpty(t *testing.T) {
	// Knight parked on e3 blocks e2e4 but a single step is also blocked.
	s := mustParseFEN(t, "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1")
	rejectMove(t, s, "e2e4", ErrIllegalMove)
	rejectMove(t, s, "e2e3", ErrIllegalMove)
	// Capturing the blocker diagonally is fine from d2.
	s2 := mustParseFEN(t, "4k3/8/8/8/8/4n3/3P4/4K3 w - - 0 1")
	next := mustMove(t, s2, "d2e3")
	if p := next.Board.At(Square{File: 4, Rank: 2}); p.Kind != Pawn || p.Color != White {
		t.Fatalf("expected white pawn on e3, got %+v", p)
	}
}

func TestPinnedPieceCannotExposeKing(t *testing.T) {
	// Bishop e2 is pinned by the rook on e4.
	s := mustParseFEN(t, "4k3/8/8/8/4r3/8/4B3/4K3 w - - 0 1")
	rejectMove(t, s, "e2d3", ErrIllegalMove)
	rejectMove(t, s, "e2f3", ErrIllegalMove)
	// Interposing stays on the pin line and is allowed.
	if _, err := AttemptMove(s, Move{From: Square{4, 1}, To: Square{4, 2}}); err == nil {
		t.Fatal("bishop cannot move like a rook")
	}
}

func TestCastlingKingside(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	next := mustMove(t, s, "e1g1")
	if p := next.Board.At(Square{File: 6, Rank: 0}); p.Kind != King {
		t.Fatalf("king not on g1 after castling: %+v", p)
	}
	if p := next.Board.At(Square{File: 5, Rank: 0}); p.Kind != Rook {
		t.Fatalf("rook not on f1 after castling: %+v", p)
	}
	if next.Board.At(Square{File: 7, Rank: 0}).Kind != NoPiece {
		t.Fatal("h1 should be empty after castling")
	}
	if next.Castling.WhiteKingside || next.Castling.WhiteQueenside {
		t.Fatal("white castling rights should be cleared after castling")
	}
}

func TestCastlingQueenside(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	next := mustMove(t, s, "e8c8")
	if p := next.Board.At(Square{File: 2, Rank: 7}); p.Kind != King {
		t.Fatalf("king not on c8: %+v", p)
	}
	if p := next.Board.At(Square{File: 3, Rank: 7}); p.Kind != Rook {
		t.Fatalf("rook not on d8: %+v", p)
	}
}

func TestCastlingThroughCheckRejected(t *testing.T) {
	// Black rook on f4 covers f1: kingside transit square is attacked.
	s := mustParseFEN(t, "r3k2r/8/8/8/5r2/8/8/R3K2R w KQkq - 0 1")
	rejectMove(t, s, "e1g1", ErrIllegalMove)
	// Queenside path (d1, c1) is not covered; still allowed.
	next := mustMove(t, s, "e1c1")
	if p := next.Board.At(Square{File: 2, Rank: 0}); p.Kind != King {
		t.Fatalf("queenside castle failed: %+v", p)
	}
}

func TestCastlingOutOfCheckRejected(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/4r3/8/8/R3K2R w KQkq - 0 1")
	rejectMove(t, s, "e1g1", ErrIllegalMove)
	rejectMove(t, s, "e1c1", ErrIllegalMove)
}

func TestCastlingBlockedPathRejected(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R2QK2R w KQkq - 0 1")
	rejectMove(t, s, "e1c1", ErrIllegalMove) // d1 occupied by own queen
}

func TestCastlingRightsLostByKingMove(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	s = mustMove(t, s, "e1e2")
	if s.Castling.WhiteKingside || s.Castling.WhiteQueenside {
		t.Fatal("king move should forfeit both wings")
	}
	s = mustMove(t, s, "e8d8") // black king move too
	s = mustMove(t, s, "e2e1") // returning does not restore the right
	s = mustMove(t, s, "d8e8")
	rejectMove(t, s, "e1g1", ErrIllegalMove)
	rejectMove(t, s, "e1c1", ErrIllegalMove)
}

func TestCastlingRightsLostByRookMoveAndCapture(t *testing.T) {
	s := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	s = mustMove(t, s, "h1h2")
	if s.Castling.WhiteKingside {
		t.Fatal("h-rook move should forfeit the kingside right")
	}
	if !s.Castling.WhiteQueenside {
		t.Fatal("queenside right should survive an h-rook move")
	}

	// Capturing the a1 rook forfeits white's queenside right.
	s2 := mustParseFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	s2 = mustMove(t, s2, "a8a1")
	if s2.Castling.WhiteQueenside {
		t.Fatal("losing the a1 rook should forfeit white's queenside right")
	}
	if s2.Castling.BlackQueenside {
		t.Fatal("the a8 rook moved; black's queenside right should be gone too")
	}
	rejectMove(t, s2, "e1c1", ErrIllegalMove)
}
