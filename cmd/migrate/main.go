package main

import (
	"log"
	"os"

	"github.com/SirClappington/signjobs/internal/app"
	"github.com/SirClappington/signjobs/internal/config"
	"github.com/SirClappington/signjobs/internal/storage"
)

// usage: migrate [up|down|status|version|redo|up-to N|down-to N]
func main() {
	app.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	args := os.Args[1:]
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	if err := storage.Migrate(cfg.PostgresDSN, cfg.MigrationsDir, command, args...); err != nil {
		log.Fatal(err)
	}
}
