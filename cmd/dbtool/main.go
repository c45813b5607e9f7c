package main

import (
	"driver-route-optimizer/internal/adapters/repositories"
	"driver-route-optimizer/internal/app"
	"driver-route-optimizer/internal/config"
	"driver-route-optimizer/internal/platform/logger"
	"flag"
	"os"

	"github.com/joho/godotenv"
)

// dbtool initializes the schema and seeds demo stops into SQLite or Postgres.
func main() {
	log := logger.New("dbtool")

	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file found (using environment variables)")
	}

	cfgPath := flag.String("config", config.Get("ROUTEOPT_CONFIG", ""), "path to YAML config file")
	seedOverride := flag.String("seed", "", "seed JSON file (overrides database.seed_path)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	seedPath := cfg.Database.SeedPath
	if *seedOverride != "" {
		seedPath = *seedOverride
	}

	log.Infof("initializing %s schema...", cfg.Database.Driver)
	conn, dialect, err := app.OpenStore(cfg.Database)
	if err != nil {
		log.Errorf("schema initialization failed: %v", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Infof("schema ready")

	log.Infof("seeding stops from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		log.Errorf("seeding failed: %v", err)
		conn.Close()
		os.Exit(1)
	}
	log.Infof("seeding complete")
}
