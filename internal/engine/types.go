// Package engine implements the chess rules: move legality, move
// execution and game termination. It is the single source of truth for
// what is and is not allowed on the board; callers submit candidate
// moves and receive either the next game state or a rejection.
//
// The engine is pure. Every operation is a function from (state, move)
// to (new state, error); rejected moves leave the input state untouched.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Rejection reasons returned by AttemptMove. Matched with errors.Is.
var (
	ErrIllegalMove    = errors.New("illegal move")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrGameOver       = errors.New("game is over")
	ErrMalformedInput = errors.New("malformed move")
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "w"
	}
	return "b"
}

// PieceKind is a closed enumeration of the six chess piece kinds. The
// zero value marks an empty square.
type PieceKind uint8

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

type Piece struct {
	Kind  PieceKind
	Color Color
}

// letters indexed by PieceKind, white case. Black is lowercased.
const pieceLetters = " PNBRQK"

// Letter returns the FEN letter for the piece, or ' ' for no piece.
func (p Piece) Letter() byte {
	l := pieceLetters[p.Kind]
	if p.Color == Black && p.Kind != NoPiece {
		return l + ('a' - 'A')
	}
	return l
}

func pieceFromLetter(ch byte) (Piece, bool) {
	color := White
	if ch >= 'a' && ch <= 'z' {
		color = Black
		ch -= 'a' - 'A'
	}
	if i := strings.IndexByte(pieceLetters[1:], ch); i >= 0 {
		return Piece{Kind: PieceKind(i + 1), Color: color}, true
	}
	return Piece{}, false
}

// Square addresses a board cell. File 0 is the a-file, rank 0 is
// White's back rank (the '1' rank).
type Square struct {
	File int
	Rank int
}

// NoSquare is the absent-square sentinel, used for the en passant target.
var NoSquare = Square{-1, -1}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.File, '1'+s.Rank)
}

// ParseSquare parses algebraic coordinates like "e4".
func ParseSquare(v string) (Square, error) {
	if len(v) != 2 || v[0] < 'a' || v[0] > 'h' || v[1] < '1' || v[1] > '8' {
		return NoSquare, fmt.Errorf("%w: bad square %q", ErrMalformedInput, v)
	}
	return Square{File: int(v[0] - 'a'), Rank: int(v[1] - '1')}, nil
}

// Move is a proposed relocation. Promotion is NoPiece unless the mover
// requested a specific promotion kind.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// ParseMove parses UCI coordinate notation: "e2e4", "e1g1", "a7a8q".
func ParseMove(v string) (Move, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if len(v) < 4 || len(v) > 5 {
		return Move{}, fmt.Errorf("%w: bad move %q", ErrMalformedInput, v)
	}
	from, err := ParseSquare(v[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(v[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(v) == 5 {
		switch v[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return Move{}, fmt.Errorf("%w: bad promotion %q", ErrMalformedInput, v)
		}
	}
	return m, nil
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPiece {
		s += string(pieceLetters[m.Promotion] + ('a' - 'A'))
	}
	return s
}

// CastlingRights track which wings each side may still castle on.
// Flags only ever transition true to false.
type CastlingRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

func (cr CastlingRights) String() string {
	var sb strings.Builder
	if cr.WhiteKingside {
		sb.WriteByte('K')
	}
	if cr.WhiteQueenside {
		sb.WriteByte('Q')
	}
	if cr.BlackKingside {
		sb.WriteByte('k')
	}
	if cr.BlackQueenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Status classifies a position. Every status other than Active and
// Check is terminal: no further moves are accepted.
type Status uint8

const (
	StatusActive Status = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
	StatusDrawRepetition
	StatusDrawFiftyMove
	StatusDrawInsufficient
)

func (s Status) Terminal() bool {
	return s != StatusActive && s != StatusCheck
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusDrawRepetition:
		return "draw_repetition"
	case StatusDrawFiftyMove:
		return "draw_50_move"
	case StatusDrawInsufficient:
		return "draw_insufficient"
	default:
		return "unknown"
	}
}
