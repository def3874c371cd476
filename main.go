package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"

	"donorviz/internal/config"
	"donorviz/internal/container"
	"donorviz/ui"
	"donorviz/ui/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Load and validate the association tables
	if err := appContainer.Init(context.Background()); err != nil {
		log.Fatalf("Failed to load association tables: %v", err)
	}

	dashboard := services.NewDashboardService(
		appContainer.Store,
		appContainer.Renderer,
		appContainer.Metrics,
		appConfig.Dashboard.SignificanceAlpha,
		appConfig.Dashboard.OverviewTop,
	)

	// Initialize web server
	server := ui.NewServer(dashboard, appContainer.Metrics, appContainer.Logger)
	if err := server.Initialize(); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	// Start the server
	log.Printf("Starting donorviz on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
