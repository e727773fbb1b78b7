package pkg

import (
	"bufio"
	"net"
	"testing"
	"time"
)

func newTestConn(t *testing.T, m *Match) (net.Conn, *bufio.Reader) {
	t.Helper()
	client, server := net.Pipe()
	client.SetDeadline(time.Now().Add(5 * time.Second))
	m.AddConn(server)
	return client, bufio.NewReader(client)
}

func readCmd(t *testing.T, r *bufio.Reader) Command {
	t.Helper()
	frame, err := readFrame(r)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	cmd, err := CommandFromBinary(frame)
	if err != nil {
		t.Fatalf("parse command: %v", err)
	}
	return cmd
}

// readUntil consumes commands until one of the wanted kind shows up,
// skipping unrelated broadcasts (usernames mostly).
func readUntil(t *testing.T, r *bufio.Reader, kind CommandKind) Command {
	t.Helper()
	for i := 0; i < 20; i++ {
		cmd := readCmd(t, r)
		if cmd.Kind == kind {
			return cmd
		}
	}
	t.Fatalf("no %s command within 20 messages", kind)
	return Command{}
}

func sendCmd(t *testing.T, conn net.Conn, cmd Command) {
	t.Helper()
	if err := writeFrame(conn, cmd.ToBinaryVec()); err != nil {
		t.Fatalf("send %s: %v", cmd.Kind, err)
	}
}

func TestMatchSeatsMovesAndHistory(t *testing.T) {
	m := NewMatch()
	defer m.Stop()

	c1, r1 := newTestConn(t, m)
	if cmd := readCmd(t, r1); cmd.Kind != KindColorSelect || cmd.Color != White {
		t.Fatalf("first player got %+v, want ColorSelect White", cmd)
	}

	c2, r2 := newTestConn(t, m)
	if cmd := readCmd(t, r2); cmd.Kind != KindColorSelect || cmd.Color != Black {
		t.Fatalf("second player got %+v, want ColorSelect Black", cmd)
	}

	_, r3 := newTestConn(t, m)
	if cmd := readCmd(t, r3); cmd.Kind != KindObserver {
		t.Fatalf("third connection got %+v, want Observer", cmd)
	}

	// Black (the attackers) opens.
	sendCmd(t, c2, MoveCommand(mustMove(t, 0, 7, 4, 7)))
	for _, r := range []*bufio.Reader{r1, r2, r3} {
		echo := readUntil(t, r, KindMove).Move.Move()
		if echo.X != 0 || echo.Y != 7 || echo.Dir != Right || echo.Delta != 4 {
			t.Fatalf("broadcast move = %+v", echo)
		}
	}

	// Same seat again: it is White's turn now.
	sendCmd(t, c2, MoveCommand(mustMove(t, 4, 7, 4, 8)))
	if cmd := readUntil(t, r2, KindIllegalMove); cmd.Err != ErrWrongPieceColor {
		t.Fatalf("out-of-turn move answered %v, want %v", cmd.Err, ErrWrongPieceColor)
	}

	// White replies.
	sendCmd(t, c1, MoveCommand(mustMove(t, 3, 5, 3, 4)))
	readUntil(t, r1, KindMove)
	readUntil(t, r2, KindMove)

	// A rule violation only answers the sender.
	sendCmd(t, c2, MoveCommand(mustMove(t, 0, 3, 0, 0)))
	if cmd := readUntil(t, r2, KindIllegalMove); cmd.Err != ErrIsProtectedTile {
		t.Fatalf("fortress move answered %v, want %v", cmd.Err, ErrIsProtectedTile)
	}

	// Observers can ask for the game so far.
	c3ReqConn := c2 // any live conn may request; use the black seat
	sendCmd(t, c3ReqConn, RequestHistoryCommand())
	if ml := readUntil(t, r2, KindMoveList); len(ml.Moves) != 2 {
		t.Fatalf("history has %d moves, want 2", len(ml.Moves))
	}

	// Usernames are relayed to everyone.
	sendCmd(t, c1, UsernameCommand("earther"))
	found := false
	for i := 0; i < 5 && !found; i++ {
		if cmd := readUntil(t, r2, KindUsername); cmd.Name == "earther" {
			found = true
		}
	}
	if !found {
		t.Fatal("username never reached the other seat")
	}

	// Clients must not speak server-only kinds.
	sendCmd(t, c1, ColorSelectCommand(White))
	readUntil(t, r1, KindIllegalCommand)

	// Unparseable frames get IllegalCommand, not a dropped connection.
	if err := writeFrame(c1, []byte{42}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, r1, KindIllegalCommand)

	// Reset starts a fresh game and clears the history.
	sendCmd(t, c2, ResetCommand())
	readUntil(t, r1, KindReset)
	sendCmd(t, c1, RequestHistoryCommand())
	if ml := readUntil(t, r1, KindMoveList); len(ml.Moves) != 0 {
		t.Fatalf("history after reset has %d moves, want 0", len(ml.Moves))
	}
}

func TestMatchReseatsAfterDisconnect(t *testing.T) {
	m := NewMatch()
	defer m.Stop()

	c1, r1 := newTestConn(t, m)
	if cmd := readCmd(t, r1); cmd.Color != White {
		t.Fatalf("first player got %+v", cmd)
	}

	c2, r2 := newTestConn(t, m)
	if cmd := readCmd(t, r2); cmd.Color != Black {
		t.Fatalf("second player got %+v", cmd)
	}

	c2.Close()
	time.Sleep(100 * time.Millisecond) // let the quit drain through the match loop

	_, r4 := newTestConn(t, m)
	if cmd := readCmd(t, r4); cmd.Kind != KindColorSelect || cmd.Color != Black {
		t.Fatalf("replacement player got %+v, want ColorSelect Black", cmd)
	}

	_ = c1
}

func TestHistoryChunking(t *testing.T) {
	m := &Match{} // no Run loop; exercise sendHistory directly
	p := NewPlayer(nil)
	p.Out = make(chan Command, 16)

	for i := 0; i < movesPerList+10; i++ {
		m.History = append(m.History, CompactMove(i))
	}
	m.sendHistory(p)

	first := <-p.Out
	if first.Kind != KindMoveList || len(first.Moves) != movesPerList {
		t.Fatalf("first chunk: kind %s, %d moves", first.Kind, len(first.Moves))
	}
	second := <-p.Out
	if len(second.Moves) != 10 {
		t.Fatalf("second chunk has %d moves, want 10", len(second.Moves))
	}
	// Each chunk must still fit a frame.
	if len(first.ToBinaryVec()) > maxFrameSize {
		t.Fatal("chunk exceeds the frame size")
	}
}
