package display

import (
	"strings"
	"testing"
)

func TestBoardFromFENStartingPosition(t *testing.T) {
	const fen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	grid, err := BoardFromFEN(fen)
	if err != nil {
		t.Fatalf("BoardFromFEN: %v", err)
	}

	lines := strings.Split(grid, "\n")
	if len(lines) != 10 {
		t.Fatalf("grid has %d lines, want 10", len(lines))
	}
	if lines[0] != "  a b c d e f g h" {
		t.Errorf("top border = %q", lines[0])
	}
	if lines[1] != "8 r n b q k b n r  8" {
		t.Errorf("rank 8 = %q", lines[1])
	}
	if lines[8] != "1 R N B Q K B N R  1" {
		t.Errorf("rank 1 = %q", lines[8])
	}
	if !strings.Contains(lines[4], ". . . . . . . .") {
		t.Errorf("empty rank = %q", lines[4])
	}
}

func TestBoardFromFENRejectsGarbage(t *testing.T) {
	for _, fen := range []string{"", "8/8/8", "9/8/8/8/8/8/8/8 w - - 0 1", "xxxxxxxx/8/8/8/8/8/8/8 w - - 0 1"} {
		if _, err := BoardFromFEN(fen); err == nil {
			t.Errorf("BoardFromFEN(%q) accepted", fen)
		}
	}
}
