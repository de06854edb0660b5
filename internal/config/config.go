package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	defaultPort     = 8000
	defaultEnvFile  = ".env"
	defaultBotDelay = time.Second
)

type Config struct {
	Stage        string
	Port         int
	DatabaseUrl  string
	MigrationDir string
	BotDelay     time.Duration
}

// Load reads the configuration from the environment. Outside
// prod a .env file is loaded first if there is one; values
// already in the environment win over it.
func Load(envFiles ...string) (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if len(envFiles) == 0 {
			envFiles = []string{defaultEnvFile}
		}
		for _, f := range envFiles {
			if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	cfg := Config{
		Stage:        os.Getenv("STAGE"),
		Port:         defaultPort,
		DatabaseUrl:  os.Getenv("DATABASE_URL"),
		MigrationDir: os.Getenv("MIGRATION_DIR"),
		BotDelay:     defaultBotDelay,
	}

	if cfg.Stage == "" {
		cfg.Stage = StageDev
	}
	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, cerr.ErrInvalidStage(cfg.Stage)
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, cerr.ErrInvalidPort(raw)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("BOT_MOVE_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return Config{}, cerr.ErrInvalidBotDelay(raw)
		}
		cfg.BotDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}
