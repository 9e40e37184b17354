package engine

import (
	"fmt"
	"strings"
)

// Board is a fixed 8x8 grid of pieces indexed by rank then file. It is
// a value type: assignment copies the whole position, which is what
// move simulation relies on.
type Board struct {
	squares [8][8]Piece
}

func (b Board) At(sq Square) Piece {
	return b.squares[sq.Rank][sq.File]
}

func (b *Board) put(sq Square, p Piece) {
	b.squares[sq.Rank][sq.File] = p
}

func (b *Board) clear(sq Square) {
	b.squares[sq.Rank][sq.File] = Piece{}
}

// startingBoard places the standard initial position.
func startingBoard() Board {
	var b Board
	back := [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b.squares[0][f] = Piece{Kind: back[f], Color: White}
		b.squares[1][f] = Piece{Kind: Pawn, Color: White}
		b.squares[6][f] = Piece{Kind: Pawn, Color: Black}
		b.squares[7][f] = Piece{Kind: back[f], Color: Black}
	}
	return b
}

// placement encodes the piece placement field of FEN, rank 8 first.
func (b Board) placement() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.Kind == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func parsePlacement(field string) (Board, error) {
	var b Board
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("invalid FEN: expected 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		r := 7 - i
		f := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				f += int(ch - '0')
				continue
			}
			p, ok := pieceFromLetter(ch)
			if !ok {
				return b, fmt.Errorf("invalid FEN: bad piece %q", ch)
			}
			if f >= 8 {
				return b, fmt.Errorf("invalid FEN: too many pieces in rank %d", r+1)
			}
			b.squares[r][f] = p
			f++
		}
		if f != 8 {
			return b, fmt.Errorf("invalid FEN: rank %d has %d files", r+1, f)
		}
	}
	return b, nil
}

// ASCII renders the board from White's point of view, rank 8 on top.
func (b Board) ASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for r := 7; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.Kind == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteByte(p.Letter())
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

// pieceCount returns the total piece count and the kinds of all
// non-king pieces. Used by the insufficient material rule.
func (b Board) pieceCount() (total int, nonKings []PieceKind) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.Kind == NoPiece {
				continue
			}
			total++
			if p.Kind != King {
				nonKings = append(nonKings, p.Kind)
			}
		}
	}
	return total, nonKings
}

// kingSquare locates the king of the given color. Exactly one king per
// color is a board invariant; a missing king is a programming error,
// not a game condition.
func (b Board) kingSquare(c Color) Square {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.Kind == King && p.Color == c {
				return Square{File: f, Rank: r}
			}
		}
	}
	panic(fmt.Sprintf("engine: no %s king on board", c))
}
