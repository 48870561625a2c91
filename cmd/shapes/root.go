package main

import (
	"fmt"
	"io"

	"github.com/praetorian-inc/shapes/pkg/automaton"
	"github.com/praetorian-inc/shapes/pkg/cluster"
	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose    bool
	quiet      bool
	configFile string
)

// settings holds profile configuration merged from flags, SHAPES_*
// environment variables and the optional config file, in that order of
// precedence.
var settings *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "shapes",
	Short: "Shapes - infer the pattern of a column of values",
	Long: `Shapes reads a column of string values and infers a single regular expression
describing them. Values are reduced to shapes (letters, digits and punctuation),
clustered, and synthesized into the narrowest pattern that still accepts them all.

Candidate patterns can also be verified against a column at a confidence floor.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().Int("max-length", cluster.DefaultMaxLength, fmt.Sprintf("Longest value (in characters) whose structure is kept, at most %d", cluster.MaxLengthLimit))
	rootCmd.PersistentFlags().Int("cap", cluster.DefaultCap, "Distinct shapes tracked per column before collapsing")
	rootCmd.PersistentFlags().Float64("fit-ratio", token.DefaultFitRatio, "Render explicit character sets when characters used <= ratio x length")
	rootCmd.PersistentFlags().Int("cache-size", automaton.DefaultCacheSize, "Compiled automata kept in the shared cache")

	settings = newSettings()

	// Add subcommands
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// newSettings returns a viper instance bound to the root persistent flags.
func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SHAPES")
	v.AutomaticEnv()
	for key, flag := range map[string]string{
		"max_length": "max-length",
		"cap":        "cap",
		"fit_ratio":  "fit-ratio",
		"cache_size": "cache-size",
	} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding --%s: %v", flag, err))
		}
	}
	return v
}

func initConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return nil
	}
	return loadConfig(configFile)
}

func loadConfig(path string) error {
	settings.SetConfigFile(path)
	if err := settings.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// newLogger returns a logger writing to w at the level chosen by
// --verbose and --quiet.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch {
	case quiet:
		log.SetLevel(logrus.ErrorLevel)
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
