package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/earther/taflterm/pkg"
	"github.com/fatih/color"
)

func main() {
	logPath := flag.String("log", "./client.log", "path to log file")
	addr := flag.String("addr", pkg.ServerPort, "server address")
	name := flag.String("name", "", "username shown to other players")
	flag.Parse()
	pkg.InitLog(*logPath, "CLIENT: ")

	if *name == "" {
		*name = petname.Generate(2, "-")
	}

	log.Println("New Client")
	cl := pkg.NewClient(*name)
	cl.Connect(*addr)
	go cl.HandleRead()
	go cl.HandleWrite()
	cl.Out <- pkg.UsernameCommand(*name)

	// Down when receiving a kill signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM)
	go func() {
		<-sigc
		cl.App.Stop()
		cl.Disconnect()
		os.Exit(0)
	}()

	if err := cl.App.SetRoot(cl.Layout, true).EnableMouse(true).Run(); err != nil {
		color.Red("client exited: %v", err)
	}
	cl.Disconnect()
}
