package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Pipeline configuration
	OutputDir string `long:"out" short:"o" env:"OUTPUT_DIR" default:"./output" description:"Output directory for parsed data"`
	DBPath    string `long:"db-path" env:"DB_PATH" description:"SQLite catalog path (optional, empty disables persistence)"`

	// Processing configuration
	WorkerCount int `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of parallel file processing workers"`

	// Report server configuration
	Serve        bool   `long:"serve" env:"SERVE" description:"Serve the finished run over HTTP after processing"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP report server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for report endpoints (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Input string `positional-arg-name:"input" description:"Path to ZIP archive or directory to parse"`
	} `positional-args:"yes" required:"yes"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		InputPath:    raw.Args.Input,
		OutputDir:    raw.OutputDir,
		DBPath:       raw.DBPath,
		WorkerCount:  raw.WorkerCount,
		Serve:        raw.Serve,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
