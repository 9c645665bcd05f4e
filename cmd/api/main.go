package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"trustlens/internal/config"
	"trustlens/internal/container"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[API] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] configuration error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[API] database connection failed: %v", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("[API] container setup failed: %v", err)
	}
	if err := c.InitWithDatabase(context.Background(), db); err != nil {
		log.Fatalf("[API] initialization failed: %v", err)
	}
	defer c.Close()

	log.Printf("[API] listening on :%s", cfg.Server.Port)
	if err := c.Server.ListenAndServe(cfg.Server.Port); err != nil {
		log.Fatalf("[API] server failed: %v", err)
	}
}
