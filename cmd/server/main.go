package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/earther/taflterm/pkg"
	"github.com/fatih/color"
)

var (
	s    *pkg.Server
	done = make(chan bool)
)

func main() {
	logPath := flag.String("log", "./server.log", "path to log file")
	addr := flag.String("addr", pkg.ServerPort, "address to listen on")
	matchId := flag.String("match", "default", "match every connection joins")
	flag.Parse()
	pkg.InitLog(*logPath, "SERVER: ")
	log.Println("Server started")
	s = pkg.NewServer()

	go s.CleanIdleMatches()

	// Create server to listen for data
	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Panic(err)
	}
	defer listener.Close()
	color.Green("taflterm server listening at %s (ssh at %s)", *addr, pkg.SshPort)
	log.Printf("Listening at %s", *addr)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				log.Printf("Failed to connect: %v", err)
				continue
			}
			s.AddConn(conn, *matchId)
		}
	}()

	// Wait for terminate signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM)
	go func() {
		<-sigc

		done <- true
	}()

	<-done
}
