package pkg

import (
	"errors"
	"fmt"
)

// GameError is a rule violation raised by Board.MovePiece. The numeric
// value is the one-byte code carried by an IllegalMove command, so the
// order here is wire format and must not change.
type GameError uint8

const (
	ErrNoPieceToMove GameError = iota
	ErrPieceInTheWay
	ErrStartOutOfBounds
	ErrTargetOutOfBounds
	ErrMoveNotHorVer
	ErrWrongPieceColor
	ErrIsProtectedTile
	ErrGameAlreadyWon
	ErrTooManyCaptures
	ErrOther
)

func (e GameError) Error() string {
	switch e {
	case ErrNoPieceToMove:
		return "No piece to move"
	case ErrPieceInTheWay:
		return "Piece in the way"
	case ErrStartOutOfBounds:
		return "Start of move out of bounds"
	case ErrTargetOutOfBounds:
		return "Target of move out of bounds"
	case ErrMoveNotHorVer:
		return "Move is not horizontal nor vertical"
	case ErrWrongPieceColor:
		return "Trying to move the wrong piece color"
	case ErrIsProtectedTile:
		return "Trying to move a soldier to a protected tile"
	case ErrGameAlreadyWon:
		return "Game is already won"
	case ErrTooManyCaptures:
		return "Too many captures for one move"
	default:
		return "Unknown game error"
	}
}

// OtherError carries a rule failure outside the closed GameError set.
// On the wire it collapses to the ErrOther code.
type OtherError string

func (e OtherError) Error() string { return string(e) }

// ErrorCode maps a rule error to its wire byte.
func ErrorCode(err error) byte {
	var ge GameError
	if errors.As(err, &ge) {
		return byte(ge)
	}
	return byte(ErrOther)
}

// GameErrorFromByte decodes a wire byte into a GameError. Unknown bytes
// are rejected rather than reinterpreted.
func GameErrorFromByte(b byte) (GameError, error) {
	if b > byte(ErrOther) {
		return 0, InvalidCommandKindError{Kind: b}
	}
	return GameError(b), nil
}

// ErrParse is the single error every structural failure in
// CommandFromBinary collapses to.
var ErrParse = errors.New("parse error")

// TooFewBytesError reports a caller-supplied buffer too small for the
// command being serialized.
type TooFewBytesError struct {
	Got      int
	Expected int
}

func (e TooFewBytesError) Error() string {
	return fmt.Sprintf("too few bytes: got %d, expected %d", e.Got, e.Expected)
}

// InvalidCommandKindError reports an unrecognized byte where a known
// code (command tag, error code, turn code) was required.
type InvalidCommandKindError struct {
	Kind byte
}

func (e InvalidCommandKindError) Error() string {
	return fmt.Sprintf("invalid command kind: %d", e.Kind)
}
