package engine

// pseudoLegal decides whether the move obeys the moving piece's
// movement pattern and board occupancy, without regard to whether it
// exposes the mover's own king.
func pseudoLegal(b Board, m Move, ep Square, cr CastlingRights) bool {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return false
	}
	p := b.At(m.From)
	if p.Kind == NoPiece {
		return false
	}
	// A destination occupied by a same-color piece is always illegal.
	if dst := b.At(m.To); dst.Kind != NoPiece && dst.Color == p.Color {
		return false
	}

	df := m.To.File - m.From.File
	dr := m.To.Rank - m.From.Rank

	switch p.Kind {
	case Pawn:
		return pawnPseudoLegal(b, m, p.Color, ep)
	case Knight:
		return (abs(df) == 1 && abs(dr) == 2) || (abs(df) == 2 && abs(dr) == 1)
	case Bishop:
		return abs(df) == abs(dr) && pathClear(b, m.From, m.To)
	case Rook:
		return (df == 0 || dr == 0) && pathClear(b, m.From, m.To)
	case Queen:
		return (abs(df) == abs(dr) || df == 0 || dr == 0) && pathClear(b, m.From, m.To)
	case King:
		if abs(df) <= 1 && abs(dr) <= 1 {
			return true
		}
		if dr == 0 && abs(df) == 2 {
			return castlePseudoLegal(b, p.Color, df > 0, cr)
		}
		return false
	case NoPiece:
		return false
	}
	return false
}

func pawnPseudoLegal(b Board, m Move, c Color, ep Square) bool {
	dir := pawnDir(c)
	home := 1
	if c == Black {
		home = 6
	}
	df := m.To.File - m.From.File
	dr := m.To.Rank - m.From.Rank

	switch {
	case df == 0 && dr == dir:
		// single step onto an empty square
		return b.At(m.To).Kind == NoPiece
	case df == 0 && dr == 2*dir && m.From.Rank == home:
		// double step: both intermediate and destination must be empty
		mid := Square{File: m.From.File, Rank: m.From.Rank + dir}
		return b.At(mid).Kind == NoPiece && b.At(m.To).Kind == NoPiece
	case abs(df) == 1 && dr == dir:
		// diagonal capture, onto an enemy piece or the en passant target
		if dst := b.At(m.To); dst.Kind != NoPiece {
			return dst.Color != c
		}
		return m.To == ep
	}
	return false
}

// castleHomeRank is the back rank for the given color.
func castleHomeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// castlePseudoLegal checks the castling preconditions: the right is
// retained, king and rook sit on their home squares with a clear path
// between them, and the king's start, transit and destination squares
// are not attacked. This three-square attack check is in addition to
// the general post-move self-check filter.
func castlePseudoLegal(b Board, c Color, kingside bool, cr CastlingRights) bool {
	rank := castleHomeRank(c)
	var allowed bool
	rookFile, transitFile, destFile := 0, 3, 2
	if kingside {
		rookFile, transitFile, destFile = 7, 5, 6
	}
	switch {
	case c == White && kingside:
		allowed = cr.WhiteKingside
	case c == White:
		allowed = cr.WhiteQueenside
	case kingside:
		allowed = cr.BlackKingside
	default:
		allowed = cr.BlackQueenside
	}
	if !allowed {
		return false
	}

	kingFrom := Square{File: 4, Rank: rank}
	rookHome := Square{File: rookFile, Rank: rank}
	if k := b.At(kingFrom); k.Kind != King || k.Color != c {
		return false
	}
	if r := b.At(rookHome); r.Kind != Rook || r.Color != c {
		return false
	}
	if !pathClear(b, kingFrom, rookHome) {
		return false
	}

	opp := c.Opposite()
	for _, f := range [3]int{4, transitFile, destFile} {
		if squareAttacked(b, Square{File: f, Rank: rank}, opp) {
			return false
		}
	}
	return true
}

// legalMove is the full legality test for the side to move:
// pseudo-legal, and the mover's king is not in check after simulating
// the move on a copy of the board. Every candidate goes through the
// full simulation; correctness over speed.
func (s *GameState) legalMove(m Move) bool {
	p := s.Board.At(m.From)
	if p.Kind == NoPiece || p.Color != s.Turn {
		return false
	}
	if !pseudoLegal(s.Board, m, s.EnPassant, s.Castling) {
		return false
	}
	next := execBoard(s.Board, m, s.EnPassant)
	return !inCheck(next, p.Color)
}

// hasLegalMove enumerates every piece of the side to move against
// every destination square and stops at the first legal pair.
func (s *GameState) hasLegalMove() bool {
	for fr := 0; fr < 8; fr++ {
		for ff := 0; ff < 8; ff++ {
			from := Square{File: ff, Rank: fr}
			p := s.Board.At(from)
			if p.Kind == NoPiece || p.Color != s.Turn {
				continue
			}
			for tr := 0; tr < 8; tr++ {
				for tf := 0; tf < 8; tf++ {
					if s.legalMove(Move{From: from, To: Square{File: tf, Rank: tr}}) {
						return true
					}
				}
			}
		}
	}
	return false
}

// LegalMoves returns every fully legal move for the side to move.
// Promotion moves are reported once with the default queen promotion.
func (s *GameState) LegalMoves() []Move {
	var moves []Move
	for fr := 0; fr < 8; fr++ {
		for ff := 0; ff < 8; ff++ {
			from := Square{File: ff, Rank: fr}
			p := s.Board.At(from)
			if p.Kind == NoPiece || p.Color != s.Turn {
				continue
			}
			for tr := 0; tr < 8; tr++ {
				for tf := 0; tf < 8; tf++ {
					m := Move{From: from, To: Square{File: tf, Rank: tr}}
					if s.legalMove(m) {
						moves = append(moves, m)
					}
				}
			}
		}
	}
	return moves
}
