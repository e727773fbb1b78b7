package pkg

import (
	"log"
	"unicode/utf8"
)

// CommandKind is the tag byte that leads every wire message. The
// values are wire format and must not change.
type CommandKind uint8

const (
	KindMove CommandKind = iota
	KindIllegalMove
	KindMoveList
	KindUsername
	KindRequestHistory
	KindColorSelect
	KindReset
	KindObserver

	KindIllegalCommand CommandKind = 255
)

func (k CommandKind) String() string {
	switch k {
	case KindMove:
		return "Move"
	case KindIllegalMove:
		return "IllegalMove"
	case KindMoveList:
		return "MoveList"
	case KindUsername:
		return "Username"
	case KindRequestHistory:
		return "RequestHistory"
	case KindColorSelect:
		return "ColorSelect"
	case KindReset:
		return "Reset"
	case KindObserver:
		return "Observer"
	case KindIllegalCommand:
		return "IllegalCommand"
	default:
		return "Unknown CommandKind"
	}
}

// Command is one protocol message. Kind selects which payload field is
// meaningful; the others stay at their zero values.
//
// Move carries a move. A user sends Move to the server, the server
// sends it to everybody.
//
// IllegalMove carries an error code, the usual reply to a rejected Move.
//
// MoveList carries a list of moves, usually answering RequestHistory.
//
// Username carries a name. A user sends it to the server, the server
// sends it to everybody.
//
// ColorSelect carries a turn: the server tells a new user which color
// they play. Could also be received midgame.
//
// Observer is what the server answers instead of ColorSelect when two
// players are already seated.
//
// Reset asks for a fresh game; the server relays it to everybody.
//
// RequestHistory and IllegalCommand carry no data.
type Command struct {
	Kind  CommandKind
	Move  CompactMove
	Err   GameError
	Moves []CompactMove
	Name  string
	Color Turn
}

func MoveCommand(m CompactMove) Command {
	return Command{Kind: KindMove, Move: m}
}

func IllegalMoveCommand(err error) Command {
	return Command{Kind: KindIllegalMove, Err: GameError(ErrorCode(err))}
}

func MoveListCommand(moves []CompactMove) Command {
	return Command{Kind: KindMoveList, Moves: moves}
}

func UsernameCommand(name string) Command {
	return Command{Kind: KindUsername, Name: name}
}

func RequestHistoryCommand() Command {
	return Command{Kind: KindRequestHistory}
}

func ColorSelectCommand(t Turn) Command {
	return Command{Kind: KindColorSelect, Color: t}
}

func ResetCommand() Command {
	return Command{Kind: KindReset}
}

func ObserverCommand() Command {
	return Command{Kind: KindObserver}
}

func IllegalCommand() Command {
	return Command{Kind: KindIllegalCommand}
}

// CommandFromBinary parses one complete message: tag byte, the exact
// payload the tag demands, and nothing after it. Every failure mode
// (unknown tag, truncated payload, trailing bytes, bad codes, invalid
// name bytes) collapses to ErrParse; the caller drops the message or
// answers IllegalCommand, never kills the connection over it.
func CommandFromBinary(data []byte) (Command, error) {
	if len(data) == 0 {
		return Command{}, ErrParse
	}
	payload := data[1:]

	switch CommandKind(data[0]) {
	case KindMove:
		if len(payload) != 4 {
			return Command{}, ErrParse
		}
		var b [4]byte
		copy(b[:], payload)
		return MoveCommand(CompactMoveFromBytes(b)), nil

	case KindIllegalMove:
		if len(payload) != 1 {
			return Command{}, ErrParse
		}
		ge, err := GameErrorFromByte(payload[0])
		if err != nil {
			return Command{}, ErrParse
		}
		return Command{Kind: KindIllegalMove, Err: ge}, nil

	case KindMoveList:
		if len(payload) < 1 {
			return Command{}, ErrParse
		}
		count := int(payload[0])
		if len(payload) != 1+4*count {
			return Command{}, ErrParse
		}
		var moves []CompactMove
		for i := 0; i < count; i++ {
			var b [4]byte
			copy(b[:], payload[1+4*i:5+4*i])
			moves = append(moves, CompactMoveFromBytes(b))
		}
		return MoveListCommand(moves), nil

	case KindUsername:
		if len(payload) < 1 {
			return Command{}, ErrParse
		}
		length := int(payload[0])
		if len(payload) != 1+length {
			return Command{}, ErrParse
		}
		name := payload[1:]
		if !utf8.Valid(name) {
			return Command{}, ErrParse
		}
		return UsernameCommand(string(name)), nil

	case KindColorSelect:
		if len(payload) != 1 {
			return Command{}, ErrParse
		}
		turn, err := TurnFromByte(payload[0])
		if err != nil {
			return Command{}, ErrParse
		}
		return ColorSelectCommand(turn), nil

	case KindRequestHistory, KindReset, KindObserver, KindIllegalCommand:
		if len(payload) != 0 {
			return Command{}, ErrParse
		}
		return Command{Kind: CommandKind(data[0])}, nil

	default:
		return Command{}, ErrParse
	}
}

// ToBinary writes the command into bytes and returns how many bytes it
// used, or TooFewBytesError when the buffer cannot hold it. MoveList
// and Username payloads are bounded to 255 entries/bytes by their
// one-byte count fields; anything longer is refused instead of
// silently truncated.
func (c Command) ToBinary(bytes []byte) (int, error) {
	switch c.Kind {
	case KindMove:
		if len(bytes) < 5 {
			return 0, TooFewBytesError{Got: len(bytes), Expected: 5}
		}
		bytes[0] = byte(KindMove)
		b := c.Move.Bytes()
		copy(bytes[1:5], b[:])
		return 5, nil

	case KindIllegalMove:
		if len(bytes) < 2 {
			return 0, TooFewBytesError{Got: len(bytes), Expected: 2}
		}
		bytes[0] = byte(KindIllegalMove)
		bytes[1] = byte(c.Err)
		return 2, nil

	case KindMoveList:
		if len(c.Moves) > 255 {
			return 0, ErrParse
		}
		need := 2 + 4*len(c.Moves)
		if len(bytes) < need {
			return 0, TooFewBytesError{Got: len(bytes), Expected: need}
		}
		bytes[0] = byte(KindMoveList)
		bytes[1] = byte(len(c.Moves))
		for i, m := range c.Moves {
			b := m.Bytes()
			copy(bytes[2+4*i:6+4*i], b[:])
		}
		return need, nil

	case KindUsername:
		if len(c.Name) > 255 {
			return 0, ErrParse
		}
		need := 2 + len(c.Name)
		if len(bytes) < need {
			return 0, TooFewBytesError{Got: len(bytes), Expected: need}
		}
		bytes[0] = byte(KindUsername)
		bytes[1] = byte(len(c.Name))
		copy(bytes[2:], c.Name)
		return need, nil

	case KindColorSelect:
		if len(bytes) < 2 {
			return 0, TooFewBytesError{Got: len(bytes), Expected: 2}
		}
		bytes[0] = byte(KindColorSelect)
		bytes[1] = byte(c.Color)
		return 2, nil

	case KindRequestHistory, KindReset, KindObserver, KindIllegalCommand:
		if len(bytes) < 1 {
			return 0, TooFewBytesError{Got: len(bytes), Expected: 1}
		}
		bytes[0] = byte(c.Kind)
		return 1, nil

	default:
		return 0, InvalidCommandKindError{Kind: byte(c.Kind)}
	}
}

// ToBinaryVec serializes into a fresh, exactly-sized slice. It panics
// (via log) on commands that cannot be encoded at all, the same
// contract Encode had for the old transport.
func (c Command) ToBinaryVec() []byte {
	buf := make([]byte, 6+4*len(c.Moves)+len(c.Name))
	n, err := c.ToBinary(buf)
	if err != nil {
		log.Panic(err)
	}
	return buf[:n]
}
