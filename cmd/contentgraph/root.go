package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	graphql "github.com/llehouerou/go-contentgraph-client"
	"github.com/llehouerou/go-contentgraph-client/internal/config"
	"github.com/llehouerou/go-contentgraph-client/internal/logger"
)

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "contentgraph",
		Short: "contentgraph talks to a GraphQL content delivery API",
		Long: `contentgraph builds, formats and validates content queries, inspects the
schema of a content delivery API and runs queries against it.

Settings come from --config, CONTENTGRAPH_* environment variables and flags,
in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			lc := cfg.Logger()
			lc.Output = cmd.ErrOrStderr()
			a.log = logger.New(lc).With().Str("cmd", cmd.Name()).Logger()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML configuration file")
	flags.String("endpoint", "", "GraphQL endpoint URL")
	flags.String("auth-mode", "", "authentication mode: none, single or hmac")
	flags.String("single-key", "", "key for single-key authentication")
	flags.String("app-key", "", "application key for HMAC authentication")
	flags.String("secret", "", "secret for HMAC authentication")
	flags.String("log-level", "", "log level: debug, info, warn, error or off")
	flags.String("log-format", "", "log format: console or json")
	for key, flag := range map[string]string{
		config.KeyEndpoint:  "endpoint",
		config.KeyAuthMode:  "auth-mode",
		config.KeySingleKey: "single-key",
		config.KeyAppKey:    "app-key",
		config.KeySecret:    "secret",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newPingCmd(a),
		newSchemaCmd(a),
		newBuildCmd(),
		newFormatCmd(),
		newValidateCmd(),
		newExecCmd(a),
		newMockCmd(a),
	)
	return root
}

// client returns a Client for the validated configuration.
func (a *app) client() (*graphql.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return graphql.NewClient(a.cfg, httpClient).WithLogger(a.log), nil
}

// readInput reads the named file, or stdin when name is "-" or absent.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("problem reading %s: %w", args[0], err)
	}
	return data, nil
}

// errCommandFailed is returned once a command has already reported its
// failure on the output.
var errCommandFailed = errors.New("command failed")
