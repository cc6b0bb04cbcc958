package main

import (
	"github.com/joho/godotenv"

	"github.com/deckhand-sh/deckhand/internal/cli"
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	// optional .env for DECKHAND_* overrides; missing file is fine
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.Execute()
}
