package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/config"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/handlers"
	"github.com/jardesonbarbosa-openco/fs-preprocessing/internal/server"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Init(setupCtx)
	fmt.Println("✅ All connections successfully established!")

	if err := cfg.CheckConnections(setupCtx); err != nil {
		log.Fatalf("❌ Connection check failed: %v", err)
	}
	fmt.Println("🟢 All connections OK")

	h := handlers.New(cfg)
	srv := server.NewServer(cfg.Port, h)

	if err := srv.Run(runCtx); err != nil {
		log.Fatal(err)
	}
}
