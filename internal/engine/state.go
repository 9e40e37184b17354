package engine

import (
	"fmt"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// GameState aggregates everything needed to referee a game: piece
// placement, side to move, castling rights, the en passant target,
// the fifty-move clock, the fingerprint history and the computed
// status. It is a value; AttemptMove returns a new one and never
// mutates its input.
type GameState struct {
	Board         Board
	Turn          Color
	Castling      CastlingRights
	EnPassant     Square
	HalfMoveClock int
	FullMove      int
	History       []string
	Status        Status
}

// NewGame returns the canonical starting position: White to move, full
// castling rights, no en passant target, empty history, status active.
func NewGame() GameState {
	return GameState{
		Board: startingBoard(),
		Turn:  White,
		Castling: CastlingRights{
			WhiteKingside: true, WhiteQueenside: true,
			BlackKingside: true, BlackQueenside: true,
		},
		EnPassant: NoSquare,
		FullMove:  1,
		Status:    StatusActive,
	}
}

// Fingerprint is the canonical position encoding used for repetition
// detection: placement, side to move, castling rights and en passant
// target. The move clocks are deliberately excluded.
func (s GameState) Fingerprint() string {
	return fmt.Sprintf("%s %s %s %s", s.Board.placement(), s.Turn, s.Castling, s.EnPassant)
}

// FEN encodes the full position including both move counters.
func (s GameState) FEN() string {
	return fmt.Sprintf("%s %d %d", s.Fingerprint(), s.HalfMoveClock, s.FullMove)
}

// AttemptMove validates the proposed move against the full rules and,
// on success, returns the next state with the turn flipped, clocks and
// rights updated and the status recomputed. On failure the returned
// state is the unchanged input and the error wraps one of the
// rejection sentinels.
func AttemptMove(s GameState, m Move) (GameState, error) {
	if s.Status.Terminal() {
		return s, fmt.Errorf("%w: %s", ErrGameOver, s.Status)
	}
	if !m.From.Valid() || !m.To.Valid() {
		return s, fmt.Errorf("%w: square out of range", ErrMalformedInput)
	}
	p := s.Board.At(m.From)
	if p.Kind == NoPiece {
		return s, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}
	if p.Color != s.Turn {
		return s, fmt.Errorf("%w: %s to move", ErrNotYourTurn, s.Turn)
	}
	if !pseudoLegal(s.Board, m, s.EnPassant, s.Castling) {
		return s, fmt.Errorf("%w: %s cannot move %s", ErrIllegalMove, p.Kind, m)
	}

	nb := execBoard(s.Board, m, s.EnPassant)
	if inCheck(nb, s.Turn) {
		return s, fmt.Errorf("%w: own king left in check", ErrIllegalMove)
	}

	capture := s.Board.At(m.To).Kind != NoPiece ||
		(p.Kind == Pawn && m.To == s.EnPassant && m.From.File != m.To.File)

	next := s
	next.Board = nb
	next.Castling = updatedRights(s.Castling, m, p)

	if p.Kind == Pawn || capture {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock = s.HalfMoveClock + 1
	}

	// The en passant window lasts exactly one ply.
	next.EnPassant = NoSquare
	if p.Kind == Pawn && abs(m.To.Rank-m.From.Rank) == 2 {
		next.EnPassant = Square{File: m.From.File, Rank: (m.From.Rank + m.To.Rank) / 2}
	}

	if s.Turn == Black {
		next.FullMove = s.FullMove + 1
	}
	next.Turn = s.Turn.Opposite()

	// Own copy of the history so the caller's state stays untouched.
	next.History = append(make([]string, 0, len(s.History)+1), s.History...)
	next.evaluate()
	return next, nil
}

// evaluate classifies the position for the side to move. Terminal
// statuses are tested in strict priority order and the first hit wins:
// no-legal-move (checkmate/stalemate), then repetition, then the
// fifty-move rule, then insufficient material. The fingerprint is
// appended to the history only once the no-legal-move test has passed.
func (s *GameState) evaluate() {
	checked := inCheck(s.Board, s.Turn)

	if !s.hasLegalMove() {
		if checked {
			s.Status = StatusCheckmate
		} else {
			s.Status = StatusStalemate
		}
		return
	}

	fp := s.Fingerprint()
	s.History = append(s.History, fp)
	seen := 0
	for _, h := range s.History {
		if h == fp {
			seen++
		}
	}
	if seen >= 3 {
		s.Status = StatusDrawRepetition
		return
	}

	if s.HalfMoveClock >= 100 {
		s.Status = StatusDrawFiftyMove
		return
	}

	if insufficientMaterial(s.Board) {
		s.Status = StatusDrawInsufficient
		return
	}

	if checked {
		s.Status = StatusCheck
	} else {
		s.Status = StatusActive
	}
}

// insufficientMaterial reports bare kings, or kings plus one minor
// piece. Deliberately narrow: configurations like king and two
// knights are not covered.
func insufficientMaterial(b Board) bool {
	total, nonKings := b.pieceCount()
	if total == 2 {
		return true
	}
	if total == 3 && len(nonKings) == 1 {
		return nonKings[0] == Bishop || nonKings[0] == Knight
	}
	return false
}

// ParseFEN loads a position from Forsyth-Edwards notation. The
// resulting state carries the loaded position as its only history
// entry and a freshly computed status.
func ParseFEN(fen string) (GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return GameState{}, fmt.Errorf("invalid FEN: expected 6 fields, got %d", len(parts))
	}

	board, err := parsePlacement(parts[0])
	if err != nil {
		return GameState{}, err
	}
	if err := requireKings(board); err != nil {
		return GameState{}, err
	}

	s := GameState{Board: board, EnPassant: NoSquare}

	switch parts[1] {
	case "w":
		s.Turn = White
	case "b":
		s.Turn = Black
	default:
		return GameState{}, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	// A position where the side not to move is already in check can
	// never arise in play and would let the mover capture the king
	// outright, so refuse it here.
	if inCheck(board, s.Turn.Opposite()) {
		return GameState{}, fmt.Errorf("invalid FEN: %s king is capturable with %s to move", s.Turn.Opposite(), s.Turn)
	}

	if parts[2] != "-" {
		for _, ch := range parts[2] {
			switch ch {
			case 'K':
				s.Castling.WhiteKingside = true
			case 'Q':
				s.Castling.WhiteQueenside = true
			case 'k':
				s.Castling.BlackKingside = true
			case 'q':
				s.Castling.BlackQueenside = true
			default:
				return GameState{}, fmt.Errorf("invalid FEN: castling field %q", parts[2])
			}
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return GameState{}, fmt.Errorf("invalid FEN: en passant field %q", parts[3])
		}
		s.EnPassant = sq
	}

	if _, err := fmt.Sscanf(parts[4], "%d", &s.HalfMoveClock); err != nil {
		return GameState{}, fmt.Errorf("invalid FEN: halfmove counter")
	}
	if _, err := fmt.Sscanf(parts[5], "%d", &s.FullMove); err != nil {
		return GameState{}, fmt.Errorf("invalid FEN: fullmove counter")
	}

	s.evaluate()
	return s, nil
}

// requireKings enforces the exactly-one-king-per-color invariant up
// front so check detection can treat a missing king as a programming
// error.
func requireKings(b Board) error {
	var white, black int
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.squares[r][f]
			if p.Kind != King {
				continue
			}
			if p.Color == White {
				white++
			} else {
				black++
			}
		}
	}
	if white != 1 || black != 1 {
		return fmt.Errorf("invalid FEN: expected one king per side, got %d white, %d black", white, black)
	}
	return nil
}
