package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.dot.industries/bootvault/internal/config"
)

var (
	flagConfigPath     string
	flagVerbose        bool
	flagVaultAddr      string
	flagVaultToken     string
	flagDirectoryAddr  string
	flagDirectoryToken string
)

var rootCmd = &cobra.Command{
	Use:   "bootvault",
	Short: "Grant bootstrapped nodes access to their vault items",
	Long: `bootvault reconciles freshly provisioned nodes with the encrypted
secret store. Once a node's client identity is registered with the central
directory, bootvault adds the node to the authorized-clients filter of
every vault item named in the bootstrap specification and persists the
updated items.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to bootvault.toml (auto-detected if omitted)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagVaultAddr, "vault-addr", "", "vault address; overrides config")
	rootCmd.PersistentFlags().StringVar(&flagVaultToken, "vault-token", "", "vault token; overrides config")
	rootCmd.PersistentFlags().StringVar(&flagDirectoryAddr, "directory-addr", "", "directory service address; overrides config")
	rootCmd.PersistentFlags().StringVar(&flagDirectoryToken, "directory-token", "", "directory service token; overrides config")

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

// loadConfig finds and parses bootvault.toml, starting from --config or
// the working directory.
func loadConfig() (*config.Config, error) {
	configPath := flagConfigPath

	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}

		found, err := config.FindConfig(cwd)
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	return config.Load(configPath)
}

// vaultSettings returns the effective vault connection settings,
// preferring CLI flags over the config file.
func vaultSettings(cfg *config.Config) (address, mount, token string) {
	address = cfg.Vault.Address
	if flagVaultAddr != "" {
		address = flagVaultAddr
	}

	mount = cfg.Vault.Mount
	if mount == "" {
		mount = "secret"
	}

	token = cfg.Vault.Token
	if flagVaultToken != "" {
		token = flagVaultToken
	}

	return address, mount, token
}

// directorySettings returns the effective directory connection settings,
// preferring CLI flags over the config file.
func directorySettings(cfg *config.Config) (address, token string) {
	address = cfg.Directory.Address
	if flagDirectoryAddr != "" {
		address = flagDirectoryAddr
	}

	token = cfg.Directory.Token
	if flagDirectoryToken != "" {
		token = flagDirectoryToken
	}

	return address, token
}
