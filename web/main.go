package main

import (
	"flag"
	"log"
	"os"

	"github.com/reactor-gpu/reactor-go/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	staticDir := flag.String("static", "static/", "Directory with the web client files")
	flag.Parse()

	webServer := server.NewServer(*port, *staticDir)

	log.Printf("SDF Renderer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
