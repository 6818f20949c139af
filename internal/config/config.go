package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fardannozami/quest-tracker/internal/domain"
)

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

type Config struct {
	SQLitePath       string        `env:"SQLITE_PATH" envDefault:"./data/whatsapp.db"`
	StoreDriver      string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	DataDir          string        `env:"DATA_DIR" envDefault:"./data"`
	StateKey         string        `env:"STATE_KEY" envDefault:"questData"`
	QuestsFile       string        `env:"QUESTS_FILE"`
	Timezone         string        `env:"TIMEZONE" envDefault:"Local"`
	RolloverInterval time.Duration `env:"ROLLOVER_INTERVAL" envDefault:"1m"`
	FlashDuration    time.Duration `env:"FLASH_DURATION" envDefault:"500ms"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"INFO"`
	GroupID          string        `env:"GROUP_ID"`
	OwnerPhone       string        `env:"OWNER_PHONE"` // Only this sender may toggle quests, empty = anyone
	BotPhone         string        `env:"BOT_PHONE"`
	ReplyDelayMinMs  int           `env:"REPLY_DELAY_MIN_MS" envDefault:"0"` // Minimum delay before reply (milliseconds)
	ReplyDelayMaxMs  int           `env:"REPLY_DELAY_MAX_MS" envDefault:"0"` // Maximum delay before reply (milliseconds), 0 = use min as fixed
	ShowTyping       bool          `env:"SHOW_TYPING" envDefault:"false"`    // Show typing indicator during delay
}

// Settings is the validated configuration with derived values resolved.
type Settings struct {
	Config
	Location *time.Location
	Catalog  domain.Catalog
}

// Load reads an optional .env file and then the process environment.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}
	return Parse()
}

// Parse builds Settings from the process environment only.
func Parse() (*Settings, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	catalog := domain.DefaultCatalog
	if cfg.QuestsFile != "" {
		catalog, err = LoadCatalog(cfg.QuestsFile)
		if err != nil {
			return nil, err
		}
	}

	return &Settings{Config: cfg, Location: loc, Catalog: catalog}, nil
}

func validate(cfg *Config) error {
	switch cfg.StoreDriver {
	case DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverFile, cfg.StoreDriver)
	}

	switch cfg.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", cfg.LogLevel)
	}

	if strings.TrimSpace(cfg.StateKey) == "" {
		return fmt.Errorf("STATE_KEY must not be empty")
	}
	if cfg.RolloverInterval <= 0 {
		return fmt.Errorf("ROLLOVER_INTERVAL must be positive, got %s", cfg.RolloverInterval)
	}
	if cfg.FlashDuration < 0 {
		return fmt.Errorf("FLASH_DURATION must not be negative, got %s", cfg.FlashDuration)
	}
	if cfg.ReplyDelayMinMs < 0 || cfg.ReplyDelayMaxMs < 0 {
		return fmt.Errorf("reply delays must not be negative")
	}
	return nil
}
