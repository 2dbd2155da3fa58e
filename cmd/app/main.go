package main

import (
	"log"

	"github.com/marke1-web/foodgram-project-react/cmd/config"
	migration "github.com/marke1-web/foodgram-project-react/cmd/database/migrate"
	"github.com/marke1-web/foodgram-project-react/internal/utils"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	if err := migration.SeedCatalog(db, "data/ingredients.csv"); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to setup app: %v", err)
	}

	if err := app.Listen(":8000"); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
