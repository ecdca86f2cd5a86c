package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go-onboard/internal/api"
	"go-onboard/internal/config"
	"go-onboard/internal/db"
	"go-onboard/internal/llm"
	redisdb "go-onboard/internal/redis"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	// Oracle pipeline: bounded queue, circuit breaker, completion client
	breaker := llm.NewCircuitBreaker(5, 30*time.Second)
	manager := llm.NewManager(cfg.Oracle.QueueSize, cfg.Oracle.MaxConcurrent, breaker)
	defer manager.Stop()
	timeout := time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second
	client := llm.NewClient(manager, timeout)
	oracle := llm.NewOracle(client, cfg.Oracle)
	log.Printf("[Main] Oracle wired: model=%s url=%s", cfg.Oracle.Model, cfg.Oracle.URL)

	r := api.SetupRouter(cfg, rdb, oracle)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
