package pkg

import (
	"bufio"
	"io"
	"log"
	"os"
)

func InitLog(dest, prefix string) {
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	log.SetOutput(f)
	log.SetPrefix(prefix)
}

// Commands travel as length-prefixed frames: one length byte, then
// that many command bytes. Every command the match layer produces fits
// (MoveList replies are chunked to movesPerList).
const maxFrameSize = 255

func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return TooFewBytesError{Got: maxFrameSize, Expected: len(payload)}
	}
	buf := make([]byte, 1+len(payload))
	buf[0] = byte(len(payload))
	copy(buf[1:], payload)
	_, err := w.Write(buf)
	return err
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	length, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, int(length))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
