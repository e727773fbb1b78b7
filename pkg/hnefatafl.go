package pkg

import (
	"strings"
)

// BoardSize is the side length of the grid. Coordinates run 0..=10.
const BoardSize = 11

type Turn uint8

const (
	White Turn = iota
	Black
)

func (t Turn) Opposite() Turn {
	if t == White {
		return Black
	}
	return White
}

func (t Turn) String() string {
	switch t {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Unknown Turn"
	}
}

// TurnFromByte decodes a wire byte into a Turn. Unknown bytes are
// rejected rather than reinterpreted.
func TurnFromByte(b byte) (Turn, error) {
	switch b {
	case byte(White):
		return White, nil
	case byte(Black):
		return Black, nil
	default:
		return 0, InvalidCommandKindError{Kind: b}
	}
}

// Piece color is derived, not stored: the King and Defenders are White,
// Attackers are Black.
type Piece uint8

const (
	NoPiece Piece = iota
	King
	Defender
	Attacker
)

func (p Piece) Color() Turn {
	if p == Attacker {
		return Black
	}
	return White
}

func (p Piece) String() string {
	switch p {
	case King:
		return "King"
	case Defender:
		return "Defender"
	case Attacker:
		return "Attacker"
	default:
		return "No piece"
	}
}

func (p Piece) rune() byte {
	switch p {
	case King:
		return 'K'
	case Defender:
		return 'D'
	case Attacker:
		return 'A'
	default:
		return '.'
	}
}

func inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < BoardSize && y < BoardSize
}

// isFortress reports whether (x,y) is one of the five protected tiles:
// the four corners and the center. Ordinary pieces may not stop on
// them and an empty fortress is hostile to every piece.
func isFortress(x, y int) bool {
	if x == 5 && y == 5 {
		return true
	}
	return (x == 0 || x == BoardSize-1) && (y == 0 || y == BoardSize-1)
}

// Board is a plain value: copying it copies the whole game. It is not
// safe for concurrent writers; each Match owns one and serializes
// access on its command loop.
type Board struct {
	cells [BoardSize][BoardSize]Piece
	turn  Turn
	won   bool
}

// EmptyBoard returns a board with no pieces. Black (the attackers)
// moves first.
func EmptyBoard() Board {
	return Board{turn: Black}
}

// NewBoard returns the standard starting position: the King on the
// center, Defenders in a diamond around him, Attackers in the four
// edge clusters.
func NewBoard() Board {
	b := EmptyBoard()

	for i := 3; i <= 7; i++ {
		a := 2 - abs(i-5)
		for j := 5 - a; j <= 5+a; j++ {
			b.PlacePiece(Defender, i, j)
		}
	}
	b.PlacePiece(King, 5, 5)

	for i := 3; i <= 7; i++ {
		b.PlacePiece(Attacker, i, 0)
		b.PlacePiece(Attacker, i, 10)
		b.PlacePiece(Attacker, 0, i)
		b.PlacePiece(Attacker, 10, i)
	}
	b.PlacePiece(Attacker, 5, 1)
	b.PlacePiece(Attacker, 5, 9)
	b.PlacePiece(Attacker, 1, 5)
	b.PlacePiece(Attacker, 9, 5)

	return b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// GetPiece returns the piece at (x,y). ok is false when the square is
// empty or the coordinates are off the board.
func (b *Board) GetPiece(x, y int) (Piece, bool) {
	if !inBounds(x, y) {
		return NoPiece, false
	}
	p := b.cells[y][x]
	return p, p != NoPiece
}

// at reads a square without bounds checking. Callers must have proven
// the coordinates already; out-of-range indexes panic.
func (b *Board) at(x, y int) Piece {
	return b.cells[y][x]
}

// PlacePiece and RemovePiece exist for board setup. They do not
// validate rules or flip the turn.
func (b *Board) PlacePiece(p Piece, x, y int) {
	b.cells[y][x] = p
}

func (b *Board) RemovePiece(x, y int) {
	b.cells[y][x] = NoPiece
}

func (b *Board) ToMove() Turn {
	return b.turn
}

func (b *Board) Won() bool {
	return b.won
}

// MovePiece validates and applies one move. Checks run in a fixed
// order and short-circuit; the board is untouched whenever an error
// comes back. On success the move is applied, captures around the
// destination are resolved, win is detected and the turn flips (unless
// the move won), and the move comes back in compact form.
func (b *Board) MovePiece(x, y, toX, toY int) (CompactMove, error) {
	if !inBounds(x, y) {
		return 0, ErrStartOutOfBounds
	}
	if !inBounds(toX, toY) {
		return 0, ErrTargetOutOfBounds
	}
	// Exactly one coordinate may change: this rejects diagonals and
	// null moves alike.
	if (x == toX) == (y == toY) {
		return 0, ErrMoveNotHorVer
	}
	if b.won {
		return 0, ErrGameAlreadyWon
	}
	piece := b.at(x, y)
	if piece == NoPiece {
		return 0, ErrNoPieceToMove
	}
	if piece.Color() != b.turn {
		return 0, ErrWrongPieceColor
	}
	if piece != King && isFortress(toX, toY) {
		return 0, ErrIsProtectedTile
	}

	move, err := NewMove(x, y, toX, toY)
	if err != nil {
		return 0, err
	}
	dx, dy := move.Dir.Offset()
	// Every square after the origin, destination included, must be
	// empty. Landing on an occupied square is a blocked path too.
	for i := 1; i <= move.Delta; i++ {
		if b.at(x+dx*i, y+dy*i) != NoPiece {
			return 0, ErrPieceInTheWay
		}
	}

	b.RemovePiece(x, y)
	b.PlacePiece(piece, toX, toY)

	won := false
	for _, d := range directions {
		captured, ok := b.tryCapture(toX, toY, d)
		if !ok {
			continue
		}
		if err := move.addCapture(d); err != nil {
			return 0, err
		}
		if captured == King {
			won = true
		}
	}

	if piece == King && isFortress(toX, toY) {
		won = true
	}

	if won {
		b.won = true
		move.Win = true
	} else {
		b.turn = b.turn.Opposite()
	}

	return move.Compact(), nil
}

// DoMove replays a move produced elsewhere (typically received from a
// peer) by recomputing its destination and running the full MovePiece
// validation. Captures and the win flag are recomputed, not trusted.
func (b *Board) DoMove(m Move) (CompactMove, error) {
	toX, toY := m.Dest()
	return b.MovePiece(m.X, m.Y, toX, toY)
}

// tryCapture checks the neighbor of (x,y) in direction d and removes
// it if flanked. An ordinary piece falls when both squares flanking it
// along the approach axis are hostile; the King only when all four of
// his neighbors are. Returns the removed piece.
func (b *Board) tryCapture(x, y int, d Direction) (Piece, bool) {
	dx, dy := d.Offset()
	nx, ny := x+dx, y+dy
	target, ok := b.GetPiece(nx, ny)
	if !ok {
		return NoPiece, false
	}

	if target == King {
		if b.hostile(nx, ny-1, White) && b.hostile(nx, ny+1, White) &&
			b.hostile(nx-1, ny, White) && b.hostile(nx+1, ny, White) {
			b.RemovePiece(nx, ny)
			return King, true
		}
		return NoPiece, false
	}

	// The near flank is the square the capturing piece just landed on.
	if b.hostile(nx+dx, ny+dy, target.Color()) && b.hostile(nx-dx, ny-dy, target.Color()) {
		b.RemovePiece(nx, ny)
		return target, true
	}
	return NoPiece, false
}

// hostile reports whether (x,y) threatens a piece of the given color:
// an enemy piece, or an empty fortress tile. Squares off the board are
// never hostile.
func (b *Board) hostile(x, y int, to Turn) bool {
	if !inBounds(x, y) {
		return false
	}
	p := b.at(x, y)
	if p == NoPiece {
		return isFortress(x, y)
	}
	return p.Color() != to
}

// AvailableMoves enumerates every legal move for the side to move by
// ray-casting from each of its pieces. A ray stops at the first
// occupied square or, for non-King pieces, the first fortress tile.
// Captures and win flags are outcomes of playing a move, so they are
// left unset here.
func (b *Board) AvailableMoves() []Move {
	var moves []Move
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := b.at(x, y)
			if p == NoPiece || p.Color() != b.turn {
				continue
			}
			for _, d := range directions {
				dx, dy := d.Offset()
				for delta := 1; ; delta++ {
					tx, ty := x+dx*delta, y+dy*delta
					if !inBounds(tx, ty) || b.at(tx, ty) != NoPiece {
						break
					}
					if isFortress(tx, ty) && p != King {
						break
					}
					moves = append(moves, Move{X: x, Y: y, Dir: d, Delta: delta})
				}
			}
		}
	}
	return moves
}

// String renders the grid row by row, '.' for empty squares. Handy in
// logs and test failures.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			sb.WriteByte(b.cells[y][x].rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
