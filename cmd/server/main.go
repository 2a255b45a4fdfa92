package main

import (
	"context"
	"log"
	"time"

	"github.com/sundayezeilo/georedirect/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Shutdown(shutdownCtx); err != nil {
			log.Println(err)
		}
	}()

	// Blocks until shutdown
	return application.Start(ctx)
}
