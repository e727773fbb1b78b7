package pkg

import (
	"bufio"
	"log"
	"net"
)

// Player is one connection attached to a match: a seat (or observer
// status), a name, and the read/write loops that turn frames into
// Commands and back.
type Player struct {
	Conn     net.Conn
	Color    Turn
	Observer bool
	Out      chan Command
	Id       int
	Name     string
}

func NewPlayer(conn net.Conn) *Player {
	return &Player{
		Conn: conn,
		Out:  make(chan Command, ConnQueueSize),
	}
}

// HandleRead parses incoming frames and forwards the commands to the
// match, tagged with the sender. Unparseable frames are answered with
// IllegalCommand and dropped; the connection stays up.
func (p *Player) HandleRead(m *Match) {
	r := bufio.NewReader(p.Conn)
	for {
		frame, err := readFrame(r)
		if err != nil {
			log.Printf("Player %d read ended: %v", p.Id, err)
			m.forward(playerCommand{Player: p, Quit: true})
			return
		}
		cmd, err := CommandFromBinary(frame)
		if err != nil {
			log.Printf("Error parsing command from player %d: %v", p.Id, err)
			p.send(IllegalCommand())
			continue
		}
		m.forward(playerCommand{Player: p, Cmd: cmd})
	}
}

func (p *Player) HandleWrite() {
	for cmd := range p.Out {
		if err := writeFrame(p.Conn, cmd.ToBinaryVec()); err != nil {
			log.Printf("Failed to write: %v Error: %v", cmd.Kind, err)
			return
		}
	}
}

func (p *Player) Disconnect() {
	p.Conn.Close()
}
