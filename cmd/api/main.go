package main

import (
	"context"
	"log"

	"donorviz/internal/config"
	"donorviz/internal/container"
	"donorviz/ui"
	"donorviz/ui/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

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

	app := ui.NewApp(dashboard, appContainer.Metrics, appContainer.Logger)
	if err := app.Start(ui.Config{Port: appConfig.Server.Port}); err != nil {
		log.Fatal("Server failed:", err)
	}
}
