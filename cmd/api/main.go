package main

import (
	"context"
	"log"

	"github.com/olamileke/vendora/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("vendora api exited: %v", err)
	}
}
