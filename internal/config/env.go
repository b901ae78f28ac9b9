package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/buildlayout/internal/logfields"
)

// envFiles are tried in order. godotenv never overrides a variable that is
// already set, so the earlier file wins over the later one and the process
// environment wins over both.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads .env files from dir so ${VAR} references in the
// configuration can be expanded. It returns the files that were loaded.
func loadEnvFiles(dir string) []string {
	var loaded []string
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(p), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(p))
		loaded = append(loaded, p)
	}
	return loaded
}
