package pkg

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/exec"
	"path"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/creack/pty"
	"github.com/gliderlabs/ssh"
)

const (
	ServerIdleTimeout = 5 * time.Minute
	SshPort           = ":2222"
	ServerPort        = ":1998"
)

// ClientBinary is the program the SSH front end spawns for each
// session. It dials the TCP port like any other client.
var ClientBinary = "taflterm"

// Server routes TCP connections into matches and runs an SSH front end
// that gives users the terminal client without installing anything.
type Server struct {
	*ssh.Server
	Matches map[string]*Match

	mu sync.Mutex
}

func setWinsize(f *os.File, w, h int) {
	syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), uintptr(syscall.TIOCSWINSZ),
		uintptr(unsafe.Pointer(&struct{ h, w, x, y uint16 }{uint16(h), uint16(w), 0, 0})))
}

func sshHandle(s ssh.Session) {
	ptyReq, winCh, isPty := s.Pty()
	if !isPty {
		io.WriteString(s, "non-interactive terminals are not supported\n")

		s.Exit(1)
		return
	}

	cmdCtx, cancelCmd := context.WithCancel(s.Context())
	defer cancelCmd()

	cmd := exec.CommandContext(cmdCtx, ClientBinary, "-addr", ServerPort, "-name", s.User())

	cmd.Env = append(s.Environ(), fmt.Sprintf("TERM=%s", ptyReq.Term))

	f, err := pty.Start(cmd)
	if err != nil {
		io.WriteString(s, fmt.Sprintf("failed to initialize pseudo-terminal: %s\n", err))
		s.Exit(1)
		return
	}
	defer f.Close()

	go func() {
		for win := range winCh {
			setWinsize(f, win.Width, win.Height)
		}
	}()

	go func() {
		io.Copy(f, s)
	}()
	io.Copy(s, f)

	f.Close()
	cmd.Wait()
}

func NewServer() *Server {
	s := &ssh.Server{
		Addr:        SshPort,
		IdleTimeout: ServerIdleTimeout,
		Handler:     sshHandle,
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		err = s.SetOption(ssh.HostKeyFile(path.Join(homeDir, ".ssh", "id_rsa")))
	}
	if err != nil {
		log.Panic(err)
	}
	go func() {
		err := s.ListenAndServe()
		if err != nil {
			panic(err)
		}
	}()

	server := &Server{
		Server:  s,
		Matches: make(map[string]*Match),
	}

	return server
}

// AddConn attaches a connection to the named match, creating the match
// on first use.
func (s *Server) AddConn(conn net.Conn, matchId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.Matches[matchId]; ok {
		m.AddConn(conn)
		return
	}
	s.Matches[matchId] = NewMatch()
	s.Matches[matchId].AddConn(conn)
	log.Printf("Created match %q", matchId)
}

// CleanIdleMatches sweeps matches nobody has touched for
// ServerIdleTimeout. Runs forever; start it on its own goroutine.
func (s *Server) CleanIdleMatches() {
	for range time.Tick(time.Minute) {
		s.mu.Lock()
		for id, m := range s.Matches {
			if m.IdleFor() > ServerIdleTimeout {
				m.Stop()
				delete(s.Matches, id)
				log.Printf("Cleaned idle match %q", id)
			}
		}
		s.mu.Unlock()
	}
}
