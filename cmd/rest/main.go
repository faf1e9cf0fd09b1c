package main

import (
	"context"
	"log"

	"voiceform-be/internal/bootstrap"
	"voiceform-be/internal/config"
	"voiceform-be/internal/server"
	"voiceform-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	ctx := context.Background()
	if err := container.WebSocketHub.Run(ctx); err != nil {
		log.Panicf("Unable to start event hub: %v", err)
	}
	container.SessionService.StartSweeper(ctx)

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
