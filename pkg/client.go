package pkg

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Client is the terminal player: it keeps its own Board, renders it as
// a tview table, sends Move commands for the user's selections and
// replays every accepted move the server broadcasts (its own included).
type Client struct {
	Board    Board
	App      *tview.Application
	Table    *tview.Table
	Layout   *tview.Grid
	Status   *tview.TextView
	Conn     net.Conn
	Out      chan Command
	Color    Turn
	Observer bool
	Name     string

	selecting       bool
	selX, selY      int
	lastX, lastY    int
	awaitingHistory bool
}

func NewClient(name string) *Client {
	app := tview.NewApplication()

	cl := &Client{
		App:   app,
		Board: NewBoard(),
		Out:   make(chan Command, ConnQueueSize),
		Name:  name,
		lastX: -1,
		lastY: -1,
	}

	newGameBtn := tview.NewButton(string(ActionNewGame)).SetSelectedFunc(func() {
		cl.Out <- ResetCommand()
	})

	historyBtn := tview.NewButton(string(ActionHistory)).SetSelectedFunc(func() {
		cl.awaitingHistory = true
		cl.Out <- RequestHistoryCommand()
	})

	exitBtn := tview.NewButton(string(ActionExit)).SetSelectedFunc(func() {
		app.Stop()
		cl.Disconnect()
		os.Exit(0)
	})

	cl.Status = tview.NewTextView().
		SetText(fmt.Sprintf("Playing as %s", name))

	gameOptions := tview.NewGrid().
		SetColumns(10, 10, 10).
		SetRows(3, 10, -1).
		AddItem(newGameBtn, 0, 0, 1, 1, 0, 0, false).
		AddItem(historyBtn, 0, 1, 1, 1, 0, 0, false).
		AddItem(exitBtn, 0, 2, 1, 1, 0, 0, false).
		AddItem(cl.Status, 1, 0, 2, 3, 0, 0, false)

	cl.Table = tview.NewTable()

	cl.Layout = tview.NewGrid().
		SetRows(-1, 40, -1).
		SetColumns(-1, 40, 34, -1).
		AddItem(tview.NewTextView(), 0, 0, 3, 1, 0, 0, false).
		AddItem(tview.NewTextView(), 1, 0, 1, 1, 0, 0, false).
		AddItem(tview.NewTextView(), 2, 0, 1, 1, 0, 0, false).
		AddItem(tview.NewTextView(), 0, 3, 1, 1, 0, 0, false).
		AddItem(tview.NewTextView(), 1, 3, 1, 1, 0, 0, false).
		AddItem(tview.NewTextView(), 2, 3, 1, 1, 0, 0, false).
		AddItem(cl.Table, 1, 1, 1, 1, 0, 0, true).
		AddItem(gameOptions, 1, 2, 1, 1, 0, 0, false)

	cl.init_table()

	return cl
}

func (cl *Client) init_table() {
	cl.RenderTable()
	cl.Table.SetSelectable(true, true)
	cl.Table.Select(0, 1).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			cl.App.Stop()
			cl.Disconnect()
			os.Exit(0)
		}
		if key == tcell.KeyEnter {
			cl.Table.SetSelectable(true, true)
		}
	}).SetSelectedFunc(func(row, col int) {
		x, y := col-1, row
		if !inBounds(x, y) { // gutter cells
			return
		}
		if cl.selecting {
			if x == cl.selX && y == cl.selY { // deactivate the selection
				cl.selecting = false
				cl.RenderTable()
				return
			}
			// Validate locally before it goes out; the server's echo is
			// what actually moves our board.
			probe := cl.Board
			if _, err := probe.MovePiece(cl.selX, cl.selY, x, y); err != nil {
				log.Printf("invalid move (%d,%d)->(%d,%d): %v", cl.selX, cl.selY, x, y, err)
				cl.setMessage(err.Error())
				cl.selecting = false
				cl.RenderTable()
				return
			}
			move, err := NewMove(cl.selX, cl.selY, x, y)
			if err != nil {
				log.Printf("invalid move: %v", err)
				cl.selecting = false
				cl.RenderTable()
				return
			}
			log.Printf("Move: %s", move)
			cl.Out <- MoveCommand(move.Compact())
			cl.selecting = false
		} else {
			piece, ok := cl.Board.GetPiece(x, y)
			if !ok || cl.Observer || piece.Color() != cl.Color {
				return
			}
			cl.selecting = true
			cl.selX, cl.selY = x, y
		}
		cl.RenderTable()
	})
}

func (cl *Client) RenderTable() {
	var r, f int
	// Step through the rows starting with the top rank
	for r = 0; r <= BoardSize; r++ {
		for f = 0; f <= BoardSize; f++ {
			if f == 0 && r != BoardSize { // draw rank square
				cell := tview.NewTableCell(fmt.Sprintf("%2d", r)).
					SetAlign(tview.AlignCenter).
					SetSelectable(false)
				cl.Table.SetCell(r, f, cell)
				continue
			}

			if r == BoardSize && f > 0 { // draw file squares
				cell := tview.NewTableCell(fmt.Sprintf(" %d", f-1)).
					SetAlign(tview.AlignCenter).
					SetSelectable(false)
				cl.Table.SetCell(r, f, cell)
				continue
			}

			if r == BoardSize && f == 0 {
				continue
			}

			// Draw the pieces
			x, y := f-1, r
			piece, _ := cl.Board.GetPiece(x, y)
			ps := fmt.Sprintf(" %c", piece.rune())
			cell := tview.NewTableCell(ps).
				SetAlign(tview.AlignCenter).
				SetBackgroundColor(cl.squareColor(x, y))
			cl.Table.SetCell(r, f, cell)
		}
	}
	cl.Table.GetCell(BoardSize, 0).SetSelectable(false) // bottom left tile is unused
	go cl.App.Draw()
}

func (cl *Client) squareColor(x, y int) tcell.Color {
	switch {
	case cl.selecting && x == cl.selX && y == cl.selY:
		return tcell.ColorRed
	case x == cl.lastX && y == cl.lastY:
		return tcell.ColorDarkCyan
	case isFortress(x, y):
		return tcell.ColorDarkGoldenrod
	case (x+y)%2 == 0:
		return tcell.ColorBlue
	default:
		return tcell.ColorGreen
	}
}

func (cl *Client) Connect(addr string) {
	log.Printf("Connecting to %s", addr)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Panic(err)
	}
	cl.Conn = conn
}

func (cl *Client) HandleWrite() {
	for cmd := range cl.Out {
		if err := writeFrame(cl.Conn, cmd.ToBinaryVec()); err != nil {
			log.Fatal(err)
		}
		log.Printf("Sent a msg type: %s", cmd.Kind)
	}
}

func (cl *Client) HandleRead() {
	r := bufio.NewReader(cl.Conn)
	for {
		frame, err := readFrame(r)
		if err != nil {
			log.Printf("Connection closed: %v", err)
			return
		}
		cmd, err := CommandFromBinary(frame)
		if err != nil {
			// Parse failures drop the message, never the connection.
			log.Printf("Error parsing command: %v", err)
			continue
		}

		switch cmd.Kind {
		case KindMove:
			move := cmd.Move.Move()
			if _, err := cl.Board.DoMove(move); err != nil {
				log.Printf("Failed to replay move %s: %v", move, err)
				continue
			}
			cl.lastX, cl.lastY = move.Dest()
			cl.RenderTable()
			cl.showStatus()

		case KindIllegalMove:
			cl.setMessage(cmd.Err.Error())

		case KindMoveList:
			if cl.awaitingHistory {
				cl.Board = NewBoard()
				cl.awaitingHistory = false
			}
			for _, cm := range cmd.Moves {
				if _, err := cl.Board.DoMove(cm.Move()); err != nil {
					log.Printf("Failed to replay history: %v", err)
					break
				}
			}
			cl.RenderTable()
			cl.showStatus()

		case KindUsername:
			cl.setMessage(fmt.Sprintf("%s is here", cmd.Name))

		case KindColorSelect:
			cl.Color = cmd.Color
			cl.showStatus()

		case KindObserver:
			cl.Observer = true
			cl.setMessage(string(ActionObserver))

		case KindReset:
			cl.Board = NewBoard()
			cl.lastX, cl.lastY = -1, -1
			cl.selecting = false
			cl.RenderTable()
			cl.showStatus()

		default:
			log.Printf("Received %s", cmd.Kind)
		}
	}
}

func (cl *Client) showStatus() {
	var s string
	switch {
	case cl.Board.Won():
		// The winner is whoever's turn did not flip.
		if !cl.Observer && cl.Board.ToMove() == cl.Color {
			s = string(ActionWin)
		} else if cl.Observer {
			s = fmt.Sprintf("%s wins", cl.Board.ToMove())
		} else {
			s = string(ActionLose)
		}
	case cl.Observer:
		s = fmt.Sprintf("%s: %s to move", ActionObserver, cl.Board.ToMove())
	case cl.Board.ToMove() == cl.Color:
		s = fmt.Sprintf("%s (%s)", ActionYourTurn, cl.Color)
	default:
		s = fmt.Sprintf("%s (%s)", ActionWaiting, cl.Color)
	}
	cl.setMessage(s)
}

func (cl *Client) setMessage(s string) {
	cl.Status.SetText(s)
	go cl.App.Draw()
}

func (cl *Client) Disconnect() {
	if cl.Conn != nil {
		cl.Conn.Close()
	}
}
