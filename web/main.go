package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	envFile := flag.String("env", ".env", "Optional dotenv file with render defaults")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Error loading %s: %v", *envFile, err)
	}
	base, err := config.FromEnv(config.Default())
	if err != nil {
		log.Fatalf("Error reading render defaults: %v", err)
	}

	webServer := server.NewServer(*port, base, renderer.NewDefaultLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	log.Printf("Tile Raytracer Web Server")
	log.Printf("API listed at http://localhost:%d/ (scenes at /api/scenes)", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
