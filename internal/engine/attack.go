package engine

// Direction offsets for piece movement.
var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// pathClear reports whether every square strictly between from and to
// is empty. The endpoints must be aligned on a rank, file or diagonal;
// callers confirm alignment first.
func pathClear(b Board, from, to Square) bool {
	df := sign(to.File - from.File)
	dr := sign(to.Rank - from.Rank)
	f, r := from.File+df, from.Rank+dr
	for f != to.File || r != to.Rank {
		if b.squares[r][f].Kind != NoPiece {
			return false
		}
		f += df
		r += dr
	}
	return true
}

// squareAttacked reports whether any piece of the given color attacks
// the square, ignoring self-check. Used for check detection and for
// the castling transit test.
func squareAttacked(b Board, sq Square, by Color) bool {
	return pawnAttacks(b, sq, by) ||
		leaperAttacks(b, sq, by, Knight, knightOffsets) ||
		leaperAttacks(b, sq, by, King, kingOffsets) ||
		sliderAttacks(b, sq, by, Bishop, diagonalDirs) ||
		sliderAttacks(b, sq, by, Rook, straightDirs)
}

func pawnAttacks(b Board, sq Square, by Color) bool {
	// A pawn attacks diagonally forward, so look one rank back from
	// the target along the attacker's direction of travel.
	r := sq.Rank - pawnDir(by)
	if r < 0 || r > 7 {
		return false
	}
	for _, df := range [2]int{-1, 1} {
		f := sq.File + df
		if f < 0 || f > 7 {
			continue
		}
		p := b.squares[r][f]
		if p.Kind == Pawn && p.Color == by {
			return true
		}
	}
	return false
}

func leaperAttacks(b Board, sq Square, by Color, kind PieceKind, offsets [8][2]int) bool {
	for _, o := range offsets {
		f, r := sq.File+o[0], sq.Rank+o[1]
		if f < 0 || f > 7 || r < 0 || r > 7 {
			continue
		}
		p := b.squares[r][f]
		if p.Kind == kind && p.Color == by {
			return true
		}
	}
	return false
}

// sliderAttacks walks each direction until blocked. The queen attacks
// along both direction sets, so it is matched together with the
// dedicated slider kind.
func sliderAttacks(b Board, sq Square, by Color, kind PieceKind, dirs [4][2]int) bool {
	for _, d := range dirs {
		f, r := sq.File+d[0], sq.Rank+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			p := b.squares[r][f]
			if p.Kind != NoPiece {
				if p.Color == by && (p.Kind == kind || p.Kind == Queen) {
					return true
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return false
}

// inCheck reports whether the given color's king is attacked.
func inCheck(b Board, c Color) bool {
	return squareAttacked(b, b.kingSquare(c), c.Opposite())
}

// pawnDir is the rank direction a pawn of the given color advances in.
func pawnDir(c Color) int {
	if c == White {
		return 1
	}
	return -1
}
