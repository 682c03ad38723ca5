package main

import (
	"log"

	"github.com/nri-matrimony/matrimony/app"
	"github.com/nri-matrimony/matrimony/config"
)

func main() {
	var cfg config.Config
	if err := config.LoadConfig(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(&cfg)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	application.Run()
}
