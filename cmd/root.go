// Package cmd provides the ciclowiki command-line interface.
//
// Configuration comes from, highest priority first:
//  1. Command-line flags (--port, --content-dir, ...)
//  2. CICLOWIKI_<SECTION>_<OPTION> environment variables
//  3. The file named by --config or CICLOWIKI_CONFIG_FILE
//  4. .ciclowiki.yml in the current directory
package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ciclowiki/internal/config"
	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/logging"
	"github.com/conneroisu/ciclowiki/internal/pages"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ciclowiki",
	Short: "A wiki about software development life-cycle models",
	Long: `ciclowiki serves a small Spanish-language wiki about software
development life-cycle models: waterfall, prototyping, RAD, evolutionary,
spiral and the V-model.

Each open tab is driven by a page controller on the server. Navigation,
the collapsible sidebar and the mobile menu are applied to the page as
patches over a websocket.

Quick Start:
  ciclowiki serve                 Start the wiki on http://localhost:8080
  ciclowiki pages                 List the pages
  ciclowiki render cascada        Print one article fragment
  ciclowiki export --out dist     Write a static copy of the site
  ciclowiki check                 Report links to unknown pages`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to the process exit status.
// Usage errors from cobra and anything unclassified exit with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation:
		return 2
	case errors.ErrorTypeConfig:
		return 3
	case errors.ErrorTypeContent:
		return 4
	case errors.ErrorTypeNetwork:
		return 5
	default:
		return 1
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ciclowiki.yml, can also use CICLOWIKI_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("content-dir", "", "directory of markdown articles overriding the built-in ones")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("content.dir", rootCmd.PersistentFlags().Lookup("content-dir"))
}

// initConfig points viper at the config file and the environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CICLOWIKI_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ciclowiki")
	}

	viper.SetEnvPrefix("CICLOWIKI")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing file is fine; defaults and flags still apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the merged configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigLoad, "failed to load configuration", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// loadLibrary reads the built-in articles, overridden by content.dir when
// one is configured.
func loadLibrary(cfg *config.Config) (*pages.Library, error) {
	sources := []fs.FS{pages.Embedded()}
	if cfg.Content.Dir != "" {
		sources = append(sources, os.DirFS(cfg.Content.Dir))
	}

	lib := pages.NewLibrary(sources...)
	if err := lib.Load(); err != nil {
		return nil, errors.NewContentError(errors.ErrCodeContentLoad, "failed to load content", err)
	}
	return lib, nil
}
