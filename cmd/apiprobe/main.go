package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"apiprobe/internal/cli"
	"apiprobe/internal/observability"
	"apiprobe/internal/providers"
	"apiprobe/internal/providers/flipkart"
	"apiprobe/internal/providers/google"
	"apiprobe/internal/providers/oneforge"
	"apiprobe/internal/providers/onepassword"
	"apiprobe/internal/providers/zendesk"
)

func init() {
	// Register providers
	providers.Register(google.New())
	providers.Register(zendesk.New())
	providers.Register(onepassword.New())
	providers.Register(oneforge.New())
	providers.Register(flipkart.New())
}

func main() {
	observability.Init(uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.ExecuteContext(ctx)
	observability.Flush(3 * time.Second)
	if err != nil {
		log.Printf("[apiprobe] %v", err)
		os.Exit(1)
	}
}
