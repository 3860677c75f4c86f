package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"ledgerline/statement-import/cmd/convert"
	"ledgerline/statement-import/cmd/ingest"
	"ledgerline/statement-import/cmd/profiles"
	"ledgerline/statement-import/cmd/rollback"
	"ledgerline/statement-import/cmd/root"
)

func init() {
	loadEnvSilently()

	root.Init()
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(profiles.Cmd)
	root.Cmd.AddCommand(rollback.Cmd)
}

// loadEnvSilently loads a .env file before any logging is configured.
// Nothing is logged; absence of the file is fine.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
