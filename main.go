package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/adapter/agentclient"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/config"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/hub"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/registry"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/repository"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/service"
	transport "github.com/vijaymuruvalugit/HiringAgentEM/internal/transport/http"
	"github.com/vijaymuruvalugit/HiringAgentEM/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting orchestrator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Agents config: %s", cfg.AgentsConfigPath)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Load the agent registry
	registryCfg, err := registry.LoadConfig(cfg.AgentsConfigPath)
	if err != nil {
		log.Fatalf("Failed to load agents config: %v", err)
	}
	reg, err := registry.FromConfig(registryCfg)
	if err != nil {
		log.Fatalf("Failed to build agent registry: %v", err)
	}
	regHandle := registry.NewHandle(reg)
	log.Printf("Agent registry loaded: %d agents", len(reg.Agents()))

	// Initialize the agent client. The env override wins for the gateway
	// URL; the agents file wins for the invocation timeout.
	baseURL := registryCfg.BaseURL()
	if cfg.GatewayBaseURL != "" {
		baseURL = cfg.GatewayBaseURL
	}
	invokeTimeout := cfg.InvokeTimeout
	if registryCfg.Gateway.TimeoutSeconds > 0 {
		invokeTimeout = time.Duration(registryCfg.Gateway.TimeoutSeconds) * time.Second
	}
	agentClient := agentclient.NewClient(baseURL, invokeTimeout)
	log.Printf("Gateway: %s (timeout %s)", baseURL, invokeTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policyContent := policy.DefaultPolicy
	if cfg.PolicyPath != "" {
		data, err := os.ReadFile(cfg.PolicyPath)
		if err != nil {
			log.Fatalf("Failed to read policy file: %v", err)
		}
		policyContent = string(data)
	}
	policyEngine, err := policy.NewEngine(ctx, policyContent)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize the progress hub
	progressHub := hub.NewHub()
	go progressHub.Run()

	// Initialize service
	svc := service.New(db, agentClient, regHandle, progressHub, cfg, policyEngine)

	// Create HTTP server
	server := transport.New(svc, progressHub)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Reload the agent registry on SIGHUP. A batch that already started
	// keeps the registry snapshot it began with.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			newCfg, err := registry.LoadConfig(cfg.AgentsConfigPath)
			if err != nil {
				log.Printf("ERROR: registry reload failed: %v", err)
				continue
			}
			newReg, err := registry.FromConfig(newCfg)
			if err != nil {
				log.Printf("ERROR: registry reload failed: %v", err)
				continue
			}
			regHandle.Swap(newReg)
			log.Printf("Agent registry reloaded: %d agents", len(newReg.Agents()))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Orchestrator stopped")
}
