package cliContext

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mudler/xlog"
)

// EnvFiles lists the env files looked up at startup, most specific first.
func EnvFiles() []string {
	envFiles := []string{".env", "aquarius.env"}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		envFiles = append(envFiles, filepath.Join(homeDir, "aquarius.env"), filepath.Join(homeDir, ".config/aquarius.env"))
	}
	return envFiles
}

// LoadEnvFiles loads every existing file into the environment. Variables
// that are already set win over file contents, and earlier files win over
// later ones.
func LoadEnvFiles(envFiles ...string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		xlog.Debug("env file found, loading environment variables from file", "envFile", envFile)
		if err := godotenv.Load(envFile); err != nil {
			xlog.Error("failed to load environment variables from file", "error", err, "envFile", envFile)
		}
	}
}
