package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/pmamm/app"
	"github.com/paw-chain/pmamm/pkg/fixed"
	"github.com/paw-chain/pmamm/pkg/state"
)

const (
	flagHome      = "home"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagDBBackend = "db-backend"
	flagDecimals  = "decimals"
	flagOverwrite = "overwrite"
	flagServe     = "serve"

	envPrefix      = "PMAMM"
	configFileName = "app"
	dbName         = "application"

	defaultMetricsPort = 36660
	defaultHealthPort  = 36661
)

// Config is the process configuration read from <home>/config/app.toml, PMAMM_*
// environment variables and flags, in increasing order of precedence.
type Config struct {
	LogLevel  string          `mapstructure:"log-level"`
	LogFormat string          `mapstructure:"log-format"`
	Decimals  uint32          `mapstructure:"decimals"`
	Authority string          `mapstructure:"authority"`
	DB        DBConfig        `mapstructure:"db"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// DBConfig selects the cosmos-db backend holding the state.
type DBConfig struct {
	Backend string `mapstructure:"backend"`
}

// TelemetryConfig configures the Prometheus and health servers started by run --serve.
type TelemetryConfig struct {
	MetricsPort int `mapstructure:"metrics-port"`
	HealthPort  int `mapstructure:"health-port"`
}

// ServerContext carries what PersistentPreRunE resolved for the subcommands.
type ServerContext struct {
	Home   string
	Viper  *viper.Viper
	Config Config
	Logger log.Logger
}

type serverContextKey struct{}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "plain")
	v.SetDefault("decimals", app.DefaultDecimals)
	v.SetDefault("authority", "")
	v.SetDefault("db.backend", string(dbm.GoLevelDBBackend))
	v.SetDefault("telemetry.metrics-port", defaultMetricsPort)
	v.SetDefault("telemetry.health-port", defaultHealthPort)
}

// configDir returns the directory holding app.toml and genesis.json.
func configDir(home string) string {
	return filepath.Join(home, "config")
}

func genesisFile(home string) string {
	return filepath.Join(configDir(home), "genesis.json")
}

// loadConfig reads the configuration of home. A missing config file is not an error.
func loadConfig(cmd *cobra.Command, home string) (*viper.Viper, Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir(home))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	for key, flag := range map[string]string{
		"log-level":  flagLogLevel,
		"log-format": flagLogFormat,
		"db.backend": flagDBBackend,
		"decimals":   flagDecimals,
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Authority == "" {
		cfg.Authority = app.DefaultAuthority().String()
	}
	return v, cfg, cfg.Validate()
}

// Validate rejects configurations the app cannot start with.
func (c Config) Validate() error {
	if _, err := fixed.NewPrecision(c.Decimals); err != nil {
		return fmt.Errorf("invalid decimals %d: %w", c.Decimals, err)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "plain", "json":
	default:
		return fmt.Errorf("invalid log format %q, expected plain or json", c.LogFormat)
	}
	switch dbm.BackendType(c.DB.Backend) {
	case dbm.MemDBBackend, dbm.GoLevelDBBackend:
	default:
		return fmt.Errorf("unsupported db backend %q", c.DB.Backend)
	}
	if _, err := sdk.AccAddressFromBech32(c.Authority); err != nil {
		return fmt.Errorf("invalid authority %q: %w", c.Authority, err)
	}
	if c.Telemetry.MetricsPort <= 0 || c.Telemetry.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.Telemetry.MetricsPort)
	}
	if c.Telemetry.HealthPort <= 0 || c.Telemetry.HealthPort > 65535 {
		return fmt.Errorf("invalid health port %d", c.Telemetry.HealthPort)
	}
	return nil
}

// Precision returns the configured fixed-point precision.
func (c Config) Precision() fixed.Precision {
	return fixed.MustNewPrecision(c.Decimals)
}

// newLogger builds the process logger from the configuration.
func newLogger(cmd *cobra.Command, cfg Config) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(level)}
	if cfg.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(cmd.ErrOrStderr(), opts...), nil
}

// openApp opens the configured state and wires the keepers against it.
func openApp(sc *ServerContext) (*app.App, error) {
	backend := dbm.BackendType(sc.Config.DB.Backend)
	if backend == dbm.MemDBBackend {
		return app.New(state.NewMemEnvironment(sc.Logger, app.StoreKeys()...), sc.Config.Precision(), sc.Config.Authority, sc.Logger), nil
	}

	dataDir := filepath.Join(sc.Home, "data")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	env, err := state.OpenEnvironment(dbName, backend, dataDir, sc.Logger, app.StoreKeys()...)
	if err != nil {
		return nil, err
	}
	return app.New(env, sc.Config.Precision(), sc.Config.Authority, sc.Logger), nil
}

// GetServerContextFromCmd returns the context set up by the root command.
func GetServerContextFromCmd(cmd *cobra.Command) *ServerContext {
	if sc, ok := cmd.Context().Value(serverContextKey{}).(*ServerContext); ok {
		return sc
	}
	return nil
}

// ConfigCmd prints the configuration resolved from file, environment and flags.
func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), GetServerContextFromCmd(cmd).Config)
		},
	}
}
