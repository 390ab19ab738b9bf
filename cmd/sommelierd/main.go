package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sommelier/internal/api"
	"sommelier/internal/cart"
	"sommelier/internal/chat"
	"sommelier/internal/config"
	"sommelier/internal/menu"
	"sommelier/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	m, err := menu.LoadFile(cfg.Menu.Path)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}

	monitor := monitoring.NewMonitor()
	gen := initializeGenerator(cfg)
	store := initializeStore(cfg)
	carts := cart.NewManager(store, monitor)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewServer(m, carts, gen, monitor).Router,
	}

	go startMetricsServer(cfg.Server.MetricsPort)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// initializeGenerator wires the text-generation collaborator. Without
// an API key the service still runs; every chat turn then resolves to
// the configuration fallback message.
func initializeGenerator(cfg *config.Config) chat.Generator {
	if cfg.OpenAI.APIKey == "" {
		log.Println("OPENAI_API_KEY not set; chat assistant will return fallback messages")
		return chat.UnconfiguredGenerator{}
	}

	opts := []openai.Option{
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithToken(cfg.OpenAI.APIKey),
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		log.Printf("Failed to initialize OpenAI client: %v; chat assistant will return fallback messages", err)
		return chat.UnconfiguredGenerator{}
	}

	return chat.NewLLMGenerator(model)
}

// initializeStore opens the durable cart store, degrading to memory
// when the database cannot be opened.
func initializeStore(cfg *config.Config) cart.Store {
	store, err := cart.OpenSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.Printf("Failed to open cart database: %v; carts will not survive restarts", err)
		return cart.NewMemoryStore()
	}
	return store
}

func startMetricsServer(port int) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
