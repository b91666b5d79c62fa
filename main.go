// main.go
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/brandlens/mention-workflows/api"
	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/providers"
	"github.com/brandlens/mention-workflows/services"
	"github.com/brandlens/mention-workflows/workflows"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			logrus.Infof("Note: No .env or dev.env file loaded: %v", err)
		} else {
			logrus.Infof("Loaded dev.env file for local development")
		}
	} else {
		logrus.Infof("Loaded .env file")
	}

	cfg := config.Load()

	logrus.Infof("Environment: %s", cfg.Environment)
	logrus.Infof("Port: %s", cfg.Port)
	logrus.Infof("Database Host: %s", cfg.Database.Host)
	logrus.Infof("Database Name: %s", cfg.Database.Name)

	if cfg.OpenAIAPIKey == "" {
		logrus.Warn("OpenAI API key not loaded, gpt models unavailable")
	}
	if cfg.AnthropicAPIKey == "" {
		logrus.Warn("Anthropic API key not loaded, claude models unavailable")
	}
	if cfg.DeepSeekAPIKey == "" {
		logrus.Warn("DeepSeek API key not loaded, deepseek models unavailable")
	}
	if cfg.DoubaoAPIKey == "" {
		logrus.Warn("Doubao API key not loaded, doubao models unavailable")
	}

	ctx := context.Background()
	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	logrus.Infof("Successfully connected to database")

	repoManager := services.NewRepositoryManager(dbClient)
	logrus.Infof("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		logrus.Infof("Running in development mode - signing key verification disabled")
	}

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "mention-workflows",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		logrus.Fatalf("Failed to create Inngest client: %v", err)
	}

	factory := providers.NewFactory(cfg)
	detectionService := services.NewDetectionService(cfg, repoManager, factory, workflows.NewEventDispatcher(client))
	analyticsService := services.NewAnalyticsService(cfg, repoManager)
	templateService := services.NewTemplateService(repoManager)
	logrus.Infof("Services initialized")

	detectionProcessor := workflows.NewDetectionProcessor(detectionService, cfg)
	detectionProcessor.SetClient(client)
	detectionProcessor.ProcessCheck()

	cacheJanitor := workflows.NewCacheJanitor(analyticsService)
	cacheJanitor.SetClient(client)
	cacheJanitor.PruneAnalyticsCache()

	logrus.Infof("All processors initialized and functions registered")

	handlers := api.NewHandlers(detectionService, analyticsService, templateService)
	router := api.NewRouter(handlers, client.Serve())

	logrus.Infof("Starting mention-workflows service on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logrus.Fatal(err)
	}
}
