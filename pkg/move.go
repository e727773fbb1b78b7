package pkg

import (
	"encoding/binary"
	"fmt"
)

type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directions = [4]Direction{Up, Right, Down, Left}

// Offset returns the unit step of the direction. Y grows downward, the
// same orientation the board is rendered in.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return "Unknown Direction"
	}
}

// maxCaptures is the geometric bound on captures per move: the square
// the piece arrived through was just vacated, so at most three of the
// four neighbors of the destination can hold a victim. The compact
// encoding has exactly three capture slots for the same reason.
const maxCaptures = 3

// Move is one ray move plus its side effects: origin, direction,
// distance, the directions (relative to the destination) in which
// pieces were captured, and whether the move ended the game.
type Move struct {
	X, Y     int
	Dir      Direction
	Delta    int
	Captures []Direction
	Win      bool
}

// NewMove builds a Move from origin and destination. The coordinates
// must describe a straight move of at least one square.
func NewMove(x, y, toX, toY int) (Move, error) {
	m := Move{X: x, Y: y}
	switch {
	case toX == x && toY < y:
		m.Dir, m.Delta = Up, y-toY
	case toX > x && toY == y:
		m.Dir, m.Delta = Right, toX-x
	case toX == x && toY > y:
		m.Dir, m.Delta = Down, toY-y
	case toX < x && toY == y:
		m.Dir, m.Delta = Left, x-toX
	default:
		return Move{}, OtherError(fmt.Sprintf("unknown move: (%d,%d) to (%d,%d)", x, y, toX, toY))
	}
	return m, nil
}

// Dest returns the destination square the move lands on.
func (m Move) Dest() (x, y int) {
	dx, dy := m.Dir.Offset()
	return m.X + dx*m.Delta, m.Y + dy*m.Delta
}

func (m Move) Equals(other Move) bool {
	if m.X != other.X || m.Y != other.Y || m.Dir != other.Dir ||
		m.Delta != other.Delta || m.Win != other.Win ||
		len(m.Captures) != len(other.Captures) {
		return false
	}
	for i := range m.Captures {
		if m.Captures[i] != other.Captures[i] {
			return false
		}
	}
	return true
}

func (m Move) String() string {
	toX, toY := m.Dest()
	return fmt.Sprintf("(%d,%d)->(%d,%d)", m.X, m.Y, toX, toY)
}

func (m *Move) addCapture(d Direction) error {
	if len(m.Captures) >= maxCaptures {
		return ErrTooManyCaptures
	}
	m.Captures = append(m.Captures, d)
	return nil
}

// CompactMove packs a Move into 23 bits of a uint32 for storage and
// transmission. Low bit first:
//
//	0-3   x
//	4-7   y
//	8-9   direction
//	10-13 delta
//	14-15 capture[0]
//	16-17 capture[1]
//	18-19 capture[2]
//	20-21 capture count
//	22    win flag
//
// Unused capture slots hold an arbitrary direction and are ignored
// past the count. Values wider than their field truncate silently;
// everything the engine produces fits.
type CompactMove uint32

const (
	shiftY        = 4
	shiftDir      = 8
	shiftDelta    = 10
	shiftCaptures = 14
	shiftCapCount = 20
	shiftWin      = 22
)

// Compact packs the move. Lossless for field values within the widths
// above: unpacking the result yields an equal Move.
func (m Move) Compact() CompactMove {
	c := CompactMove(m.X & 0xf)
	c |= CompactMove(m.Y&0xf) << shiftY
	c |= CompactMove(m.Dir&0x3) << shiftDir
	c |= CompactMove(m.Delta&0xf) << shiftDelta
	for i, d := range m.Captures {
		if i == maxCaptures {
			break
		}
		c |= CompactMove(d&0x3) << (shiftCaptures + 2*i)
	}
	c |= CompactMove(len(m.Captures)&0x3) << shiftCapCount
	if m.Win {
		c |= 1 << shiftWin
	}
	return c
}

// Move unpacks the compact form.
func (c CompactMove) Move() Move {
	m := Move{
		X:     int(c & 0xf),
		Y:     int(c >> shiftY & 0xf),
		Dir:   Direction(c >> shiftDir & 0x3),
		Delta: int(c >> shiftDelta & 0xf),
		Win:   c>>shiftWin&0x1 == 1,
	}
	count := int(c >> shiftCapCount & 0x3)
	for i := 0; i < count; i++ {
		m.Captures = append(m.Captures, Direction(c>>(shiftCaptures+2*i)&0x3))
	}
	return m
}

// Bytes is the 4-byte wire form, little-endian.
func (c CompactMove) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(c))
	return b
}

func CompactMoveFromBytes(b [4]byte) CompactMove {
	return CompactMove(binary.LittleEndian.Uint32(b[:]))
}
