package main

import (
	"log"

	"github.com/PulsePath/pulsetrack-go/internal/application/startup"
)

func main() {
	if err := startup.Initialize(); err != nil {
		log.Fatalf("pulsetrack failed to start: %v", err)
	}
}
