// Package cmd contains all CLI commands for salesctl
package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/config"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/salesctl/internal/output"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  *logrus.Logger
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Sales management command line client",
	Long: `salesctl talks to the sales backend from the terminal.

The session token and the cart are kept in a local store between runs, so a
cart built across several invocations is submitted with a single checkout.

Example usage:
  salesctl login --email ana@loja.com      # Sign in (password is prompted)
  salesctl products list                   # Browse the catalog
  salesctl cart add 7 --quantity 2         # Put two units of product 7 in the cart
  salesctl checkout                        # Submit the cart as an order
  salesctl orders finish 42                # Mark order 42 as finished`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return describe(rootCmd.Execute())
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .salesctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig(cmd *cobra.Command) error {
	logger = logrus.New()
	logger.Out = cmd.ErrOrStderr()
	logger.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	logger.Level = logrus.WarnLevel

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	if verbose || cfg.Logging.Level == "debug" {
		logger.Level = logrus.DebugLevel
	} else if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil && lvl < logrus.InfoLevel {
		logger.Level = lvl
	}

	logger.WithFields(logrus.Fields{
		"api":   cfg.API.BaseURL,
		"store": cfg.Store.Backend,
	}).Debug("configuration loaded")
	return nil
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	colors := !noColor && output.ResolveColors(cfg.Output.Colors)
	return output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), colors)
}
