package engine

// execBoard applies an accepted move to a copy of the board and
// returns the result. The default effect relocates the moving piece;
// at most one of the three special effects then applies: en passant
// capture removal, promotion substitution, or the castling rook shift.
//
// execBoard never re-validates legality. It is invoked on pseudo-legal
// moves during simulation and on fully-legal moves on commit.
func execBoard(b Board, m Move, ep Square) Board {
	p := b.At(m.From)
	nb := b
	nb.clear(m.From)
	nb.put(m.To, p)

	switch {
	case p.Kind == Pawn && m.To == ep && m.From.File != m.To.File:
		// En passant: the captured pawn sits behind the destination,
		// same file as the destination, same rank as the origin.
		nb.clear(Square{File: m.To.File, Rank: m.From.Rank})

	case p.Kind == Pawn && (m.To.Rank == 0 || m.To.Rank == 7):
		nb.put(m.To, Piece{Kind: promotionKind(m.Promotion), Color: p.Color})

	case p.Kind == King && abs(m.To.File-m.From.File) == 2:
		// Castling: the rook crosses from its home file to the file
		// the king just passed over.
		rank := m.From.Rank
		if m.To.File > m.From.File {
			nb.clear(Square{File: 7, Rank: rank})
			nb.put(Square{File: 5, Rank: rank}, Piece{Kind: Rook, Color: p.Color})
		} else {
			nb.clear(Square{File: 0, Rank: rank})
			nb.put(Square{File: 3, Rank: rank}, Piece{Kind: Rook, Color: p.Color})
		}
	}

	return nb
}

// promotionKind maps the requested promotion to a valid piece kind,
// defaulting to queen when unspecified or invalid.
func promotionKind(k PieceKind) PieceKind {
	switch k {
	case Knight, Bishop, Rook, Queen:
		return k
	default:
		return Queen
	}
}

// updatedRights clears castling rights affected by the move: any king
// move forfeits both wings, a rook leaving its home square forfeits
// that wing, and capturing a rook on its home square forfeits the
// victim's wing. Rights never come back.
func updatedRights(cr CastlingRights, m Move, p Piece) CastlingRights {
	if p.Kind == King {
		if p.Color == White {
			cr.WhiteKingside, cr.WhiteQueenside = false, false
		} else {
			cr.BlackKingside, cr.BlackQueenside = false, false
		}
	}
	for _, sq := range [2]Square{m.From, m.To} {
		switch sq {
		case Square{File: 0, Rank: 0}:
			cr.WhiteQueenside = false
		case Square{File: 7, Rank: 0}:
			cr.WhiteKingside = false
		case Square{File: 0, Rank: 7}:
			cr.BlackQueenside = false
		case Square{File: 7, Rank: 7}:
			cr.BlackKingside = false
		}
	}
	return cr
}
