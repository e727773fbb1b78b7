package pkg

import (
	"log"
	"net"
	"sync/atomic"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
)

const (
	MessageQueueSize = 20
	ConnQueueSize    = 10
	ClockDuration    = 30 * time.Minute

	// movesPerList keeps a MoveList reply inside one frame:
	// 2 + 4*63 = 254 bytes.
	movesPerList = 63
)

// playerCommand is what travels on a match's In channel: a parsed
// command tagged with its sender, or a join/quit/stop event.
type playerCommand struct {
	Player *Player
	Cmd    Command
	Join   bool
	Quit   bool
	Stop   bool
}

// Match is one game session: a board, up to two seated players plus
// observers, and the move history. All state is owned by the Run
// goroutine; everything reaches it through the In channel, which keeps
// the Board single-writer.
type Match struct {
	Board   Board
	Players []*Player
	History []CompactMove
	Clocks  [2]*Clock
	In      chan playerCommand

	nextId     int
	stopped    atomic.Bool
	lastActive atomic.Int64
}

func NewMatch() *Match {
	m := &Match{
		Board:  NewBoard(),
		Clocks: [2]*Clock{NewClock(ClockDuration), NewClock(ClockDuration)},
		In:     make(chan playerCommand, MessageQueueSize),
	}
	m.touch()
	m.Clocks[Black].Start() // attackers move first
	go m.Run()
	return m
}

// AddConn hands a fresh connection to the match loop.
func (m *Match) AddConn(conn net.Conn) {
	m.forward(playerCommand{Player: NewPlayer(conn), Join: true})
}

// Stop tears the match down: every connection is closed and the Run
// goroutine exits.
func (m *Match) Stop() {
	m.forward(playerCommand{Stop: true})
}

func (m *Match) forward(pc playerCommand) {
	if m.stopped.Load() {
		return
	}
	m.In <- pc
}

func (m *Match) touch() {
	m.lastActive.Store(time.Now().UnixNano())
}

// IdleFor reports how long ago the match last saw any event.
func (m *Match) IdleFor() time.Duration {
	return time.Since(time.Unix(0, m.lastActive.Load()))
}

func (m *Match) Run() {
	for pc := range m.In {
		m.touch()
		switch {
		case pc.Stop:
			m.stopped.Store(true)
			for _, p := range m.Players {
				p.Disconnect()
				close(p.Out)
			}
			m.Players = nil
			return
		case pc.Join:
			m.addPlayer(pc.Player)
		case pc.Quit:
			m.removePlayer(pc.Player)
		default:
			m.handleCommand(pc.Player, pc.Cmd)
		}
	}
}

func (m *Match) addPlayer(p *Player) {
	p.Id = m.nextId
	m.nextId++

	taken := [2]bool{}
	for _, q := range m.Players {
		if !q.Observer {
			taken[q.Color] = true
		}
	}
	switch {
	case !taken[White]:
		p.Color = White
	case !taken[Black]:
		p.Color = Black
	default:
		p.Observer = true
	}

	m.Players = append(m.Players, p)
	go p.HandleWrite()
	go p.HandleRead(m)

	if p.Observer {
		p.send(ObserverCommand())
		log.Printf("Added an observer: %d", p.Id)
	} else {
		p.send(ColorSelectCommand(p.Color))
		log.Printf("Added a Player: %s", p.Color)
	}

	// Everybody gets a name even before the Username command shows up.
	p.Name = petname.Generate(2, "-")
	m.broadcast(UsernameCommand(p.Name))
}

func (m *Match) removePlayer(p *Player) {
	for i, q := range m.Players {
		if q == p {
			m.Players = append(m.Players[:i], m.Players[i+1:]...)
			break
		}
	}
	p.Disconnect()
	close(p.Out)
	log.Printf("Removed player %d (%s)", p.Id, p.Name)
}

func (m *Match) handleCommand(p *Player, cmd Command) {
	switch cmd.Kind {
	case KindMove:
		if p.Observer || p.Color != m.Board.ToMove() {
			p.send(IllegalMoveCommand(ErrWrongPieceColor))
			return
		}
		compact, err := m.Board.DoMove(cmd.Move.Move())
		if err != nil {
			p.send(IllegalMoveCommand(err))
			return
		}
		m.History = append(m.History, compact)
		m.broadcast(MoveCommand(compact))
		if m.Board.Won() {
			m.Clocks[White].Pause()
			m.Clocks[Black].Pause()
			log.Printf("Match won by %s", m.Board.ToMove())
		} else {
			m.switchClocks()
		}

	case KindUsername:
		p.Name = cmd.Name
		m.broadcast(UsernameCommand(p.Name))

	case KindRequestHistory:
		m.sendHistory(p)

	case KindReset:
		m.Board = NewBoard()
		m.History = nil
		m.Clocks[White].Reset()
		m.Clocks[Black].Reset()
		m.Clocks[Black].Start()
		m.broadcast(ResetCommand())
		log.Printf("Match reset by player %d", p.Id)

	default:
		// Server-to-client kinds and anything unknown.
		p.send(IllegalCommand())
	}
}

func (m *Match) switchClocks() {
	m.Clocks[m.Board.ToMove()].Start()
	m.Clocks[m.Board.ToMove().Opposite()].Pause()
}

// sendHistory answers RequestHistory with the whole game so far,
// chunked so every MoveList fits its one-byte count and one frame.
func (m *Match) sendHistory(p *Player) {
	if len(m.History) == 0 {
		p.send(MoveListCommand(nil))
		return
	}
	for start := 0; start < len(m.History); start += movesPerList {
		end := start + movesPerList
		if end > len(m.History) {
			end = len(m.History)
		}
		p.send(MoveListCommand(m.History[start:end]))
	}
}

func (m *Match) broadcast(cmd Command) {
	for _, p := range m.Players {
		p.send(cmd)
	}
}

// send never blocks the match loop: a player whose queue backed up
// loses the message instead of stalling the game for everyone.
func (p *Player) send(cmd Command) {
	select {
	case p.Out <- cmd:
	default:
		log.Printf("Player %d queue full, dropping %s", p.Id, cmd.Kind)
	}
}
