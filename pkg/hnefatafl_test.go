package pkg

import (
	"strings"
	"testing"
)

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()

	want := strings.Join([]string{
		"...AAAAA...",
		".....A.....",
		"...........",
		"A....D....A",
		"A...DDD...A",
		"AA.DDKDD.AA",
		"A...DDD...A",
		"A....D....A",
		"...........",
		".....A.....",
		"...AAAAA...",
		"",
	}, "\n")

	if got := b.String(); got != want {
		t.Errorf("starting position wrong:\ngot:\n%s\nwant:\n%s", got, want)
	}

	if b.ToMove() != Black {
		t.Errorf("attackers should move first, got %s", b.ToMove())
	}
	if b.Won() {
		t.Error("fresh board already won")
	}
}

func TestGetPieceOutOfBounds(t *testing.T) {
	boards := []Board{NewBoard(), EmptyBoard()}
	coords := [][2]int{{-1, 0}, {0, -1}, {11, 0}, {0, 11}, {-4, 7}, {0, 19}, {100, 100}}

	for _, b := range boards {
		for _, c := range coords {
			if p, ok := b.GetPiece(c[0], c[1]); ok {
				t.Errorf("GetPiece(%d,%d) = %s, want nothing", c[0], c[1], p)
			}
		}
	}
}

func TestMoveValidationOrder(t *testing.T) {
	b := NewBoard()
	before := b.String()

	cases := []struct {
		name           string
		x, y, toX, toY int
		want           GameError
	}{
		{"start out of bounds beats bad target", -4, 7, 3, 7, ErrStartOutOfBounds},
		{"start out of bounds high", 0, 19, 0, 7, ErrStartOutOfBounds},
		{"target out of bounds low", 0, 7, -2, 7, ErrTargetOutOfBounds},
		{"target out of bounds high", 0, 7, 0, 11, ErrTargetOutOfBounds},
		{"diagonal", 0, 7, 3, 9, ErrMoveNotHorVer},
		{"null move", 0, 7, 0, 7, ErrMoveNotHorVer},
		{"empty source", 1, 7, 4, 7, ErrNoPieceToMove},
		{"defender on black's turn", 3, 5, 2, 5, ErrWrongPieceColor},
		{"soldier onto corner", 0, 3, 0, 0, ErrIsProtectedTile},
		{"blocked path", 0, 7, 5, 7, ErrPieceInTheWay},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.MovePiece(tc.x, tc.y, tc.toX, tc.toY)
			if err != tc.want {
				t.Errorf("MovePiece(%d,%d,%d,%d) = %v, want %v", tc.x, tc.y, tc.toX, tc.toY, err, tc.want)
			}
		})
	}

	if after := b.String(); after != before {
		t.Errorf("board mutated by rejected moves:\nbefore:\n%s\nafter:\n%s", before, after)
	}
	if b.ToMove() != Black {
		t.Errorf("turn flipped by rejected moves, got %s", b.ToMove())
	}
}

func TestFirstMove(t *testing.T) {
	b := NewBoard()

	cm, err := b.MovePiece(0, 7, 4, 7)
	if err != nil {
		t.Fatalf("MovePiece(0,7,4,7) failed: %v", err)
	}

	if p, ok := b.GetPiece(0, 7); ok {
		t.Errorf("source still holds %s", p)
	}
	if p, _ := b.GetPiece(4, 7); p != Attacker {
		t.Errorf("destination holds %s, want Attacker", p)
	}
	if b.ToMove() != White {
		t.Errorf("turn = %s after a black move, want White", b.ToMove())
	}

	mv := cm.Move()
	want := Move{X: 0, Y: 7, Dir: Right, Delta: 4}
	if !mv.Equals(want) {
		t.Errorf("unpacked move = %+v, want %+v", mv, want)
	}
}

func TestSandwichCapture(t *testing.T) {
	b := EmptyBoard()
	b.PlacePiece(Attacker, 3, 3)
	b.PlacePiece(Attacker, 5, 7)
	b.PlacePiece(Defender, 4, 3)

	cm, err := b.MovePiece(5, 7, 5, 3)
	if err != nil {
		t.Fatalf("MovePiece(5,7,5,3) failed: %v", err)
	}

	if _, ok := b.GetPiece(4, 3); ok {
		t.Error("defender at (4,3) survived the sandwich")
	}
	if b.ToMove() != White {
		t.Errorf("turn = %s, want White", b.ToMove())
	}
	if b.Won() {
		t.Error("ordinary capture flagged as a win")
	}

	mv := cm.Move()
	if len(mv.Captures) != 1 || mv.Captures[0] != Left {
		t.Errorf("captures = %v, want [Left]", mv.Captures)
	}
	if mv.Win {
		t.Error("win flag set on an ordinary capture")
	}
}

func TestKingNotSandwiched(t *testing.T) {
	// Two hostile flanks on one axis are not enough against the King.
	b := EmptyBoard()
	b.PlacePiece(King, 4, 5)
	b.PlacePiece(Attacker, 4, 4)
	b.PlacePiece(Attacker, 1, 6)

	if _, err := b.MovePiece(1, 6, 4, 6); err != nil {
		t.Fatalf("MovePiece failed: %v", err)
	}
	if p, _ := b.GetPiece(4, 5); p != King {
		t.Error("king captured without being surrounded on all four sides")
	}
	if b.Won() {
		t.Error("game won without a king capture")
	}
}

func TestKingSurroundCapture(t *testing.T) {
	// The empty center (5,5) supplies the fourth hostile side.
	b := EmptyBoard()
	b.PlacePiece(King, 4, 5)
	b.PlacePiece(Attacker, 4, 4)
	b.PlacePiece(Attacker, 4, 6)
	b.PlacePiece(Attacker, 1, 5)

	cm, err := b.MovePiece(1, 5, 3, 5)
	if err != nil {
		t.Fatalf("MovePiece(1,5,3,5) failed: %v", err)
	}

	if _, ok := b.GetPiece(4, 5); ok {
		t.Error("king survived being surrounded")
	}
	if !b.Won() {
		t.Error("king capture did not win the game")
	}
	if b.ToMove() != Black {
		t.Errorf("turn flipped on a winning move, got %s", b.ToMove())
	}

	mv := cm.Move()
	if !mv.Win {
		t.Error("win flag unset on the winning move")
	}
	if len(mv.Captures) != 1 || mv.Captures[0] != Right {
		t.Errorf("captures = %v, want [Right]", mv.Captures)
	}

	if _, err := b.MovePiece(3, 5, 3, 6); err != ErrGameAlreadyWon {
		t.Errorf("move after win = %v, want %v", err, ErrGameAlreadyWon)
	}
}

func TestKingReachesCorner(t *testing.T) {
	b := EmptyBoard()
	b.PlacePiece(King, 0, 5)
	b.PlacePiece(Attacker, 10, 6)
	if _, err := b.MovePiece(10, 6, 10, 7); err != nil {
		t.Fatalf("setup move failed: %v", err)
	}

	cm, err := b.MovePiece(0, 5, 0, 0)
	if err != nil {
		t.Fatalf("king move to corner failed: %v", err)
	}
	if !b.Won() {
		t.Error("king on a corner did not win")
	}
	if !cm.Move().Win {
		t.Error("win flag unset")
	}
	if b.ToMove() != White {
		t.Errorf("turn flipped on a winning move, got %s", b.ToMove())
	}
}

func hasMoveTo(moves []Move, fromX, fromY, toX, toY int) bool {
	for _, m := range moves {
		x, y := m.Dest()
		if m.X == fromX && m.Y == fromY && x == toX && y == toY {
			return true
		}
	}
	return false
}

func TestAvailableMovesKingVsSoldier(t *testing.T) {
	b := EmptyBoard()
	b.PlacePiece(King, 0, 5)
	b.PlacePiece(Attacker, 10, 0)
	if _, err := b.MovePiece(10, 0, 10, 1); err != nil {
		t.Fatalf("setup move failed: %v", err)
	}

	moves := b.AvailableMoves()
	if !hasMoveTo(moves, 0, 5, 0, 0) {
		t.Error("king cannot reach corner (0,0)")
	}
	if !hasMoveTo(moves, 0, 5, 0, 10) {
		t.Error("king cannot reach corner (0,10)")
	}

	b = EmptyBoard()
	b.PlacePiece(Defender, 0, 5)
	b.PlacePiece(Attacker, 10, 0)
	if _, err := b.MovePiece(10, 0, 10, 1); err != nil {
		t.Fatalf("setup move failed: %v", err)
	}

	moves = b.AvailableMoves()
	if hasMoveTo(moves, 0, 5, 0, 0) || hasMoveTo(moves, 0, 5, 0, 10) {
		t.Error("defender offered a fortress corner as a destination")
	}
	if !hasMoveTo(moves, 0, 5, 0, 1) || !hasMoveTo(moves, 0, 5, 0, 9) {
		t.Error("defender missing moves adjacent to the corners")
	}
}

func TestAvailableMovesBlocked(t *testing.T) {
	b := NewBoard()
	moves := b.AvailableMoves()

	for _, m := range moves {
		p, _ := b.GetPiece(m.X, m.Y)
		if p.Color() != Black {
			t.Errorf("move %s generated for a %s piece on black's turn", m, p.Color())
		}
		x, y := m.Dest()
		if _, occupied := b.GetPiece(x, y); occupied {
			t.Errorf("move %s lands on an occupied square", m)
		}
		if isFortress(x, y) {
			t.Errorf("move %s lands a soldier on a fortress", m)
		}
	}

	// Rays stop at the first blocker: (0,3) can go right only up to (4,3).
	if !hasMoveTo(moves, 0, 3, 4, 3) {
		t.Error("missing (0,3)->(4,3)")
	}
	if hasMoveTo(moves, 0, 3, 5, 3) {
		t.Error("ray passed through the defender at (5,3)")
	}
}

func TestDoMoveReplaysGame(t *testing.T) {
	local := NewBoard()
	remote := NewBoard()

	plays := [][4]int{
		{0, 7, 4, 7}, // black
		{3, 5, 3, 7}, // white
		{5, 1, 5, 2}, // black
	}

	var history []CompactMove
	for _, p := range plays {
		cm, err := local.MovePiece(p[0], p[1], p[2], p[3])
		if err != nil {
			t.Fatalf("MovePiece(%v) failed: %v", p, err)
		}
		history = append(history, cm)
	}

	for _, cm := range history {
		replayed, err := remote.DoMove(cm.Move())
		if err != nil {
			t.Fatalf("DoMove(%s) failed: %v", cm.Move(), err)
		}
		if replayed != cm {
			t.Errorf("replay produced %#x, original %#x", replayed, cm)
		}
	}

	if local.String() != remote.String() {
		t.Errorf("replayed board differs:\nlocal:\n%s\nremote:\n%s", local.String(), remote.String())
	}
	if local.ToMove() != remote.ToMove() {
		t.Errorf("replayed turn differs: %s vs %s", local.ToMove(), remote.ToMove())
	}
}

func TestPieceColors(t *testing.T) {
	if King.Color() != White || Defender.Color() != White {
		t.Error("king and defenders must be white")
	}
	if Attacker.Color() != Black {
		t.Error("attackers must be black")
	}
	if White.Opposite() != Black || Black.Opposite() != White {
		t.Error("Opposite is broken")
	}
}

func TestTurnFromByte(t *testing.T) {
	for _, turn := range []Turn{White, Black} {
		got, err := TurnFromByte(byte(turn))
		if err != nil || got != turn {
			t.Errorf("TurnFromByte(%d) = %v, %v", turn, got, err)
		}
	}
	if _, err := TurnFromByte(2); err == nil {
		t.Error("TurnFromByte(2) accepted an unknown code")
	}
}
