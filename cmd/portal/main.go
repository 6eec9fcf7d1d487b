package main

import (
	"context"
	"log"

	"github.com/Apurer/vaccine-portal/internal/app/portal"
)

func main() {
	if err := portal.Run(context.Background()); err != nil {
		log.Fatalf("vaccine portal exited: %v", err)
	}
}
