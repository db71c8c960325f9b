// Command graphctl is a thin CLI wrapper around the graph engine's REST API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/relgraph/graphengine/client"
)

// Build-time variables set via ldflags.
var (
	version = "0.1.0"
)

var (
	apiClient *client.Client
	flagURL   string
	flagFmt   string
)

type configFile struct {
	URL           string                   `yaml:"url"`
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL string `yaml:"url"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "graphctl",
		Short:   "graphctl — operate the graph handler engine from the command line",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "http://localhost:3030", "graph engine server URL (env: GRAPHCTL_URL)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "output format: json|quiet")

	if err := viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url")); err != nil {
		fatal("binding url flag", err)
	}

	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newIDCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers configuration through viper: flag > environment >
// config file > built-in default. The config file's profile selection can't
// be expressed as a single viper key, so it's resolved by hand into a plain
// URL string and fed back in as viper's default, letting BindPFlag and
// AutomaticEnv take precedence over it exactly as they would over any other
// default value.
func resolveConfig() {
	viper.SetDefault("url", "http://localhost:3030")

	if fileURL := resolveConfigFileURL(); fileURL != "" {
		viper.SetDefault("url", fileURL)
	}

	viper.SetEnvPrefix("GRAPHCTL")
	viper.AutomaticEnv()

	flagURL = viper.GetString("url")
}

// resolveConfigFileURL reads ~/.graphctl/config.yaml and resolves its active
// profile (or top-level url) to a single URL string, or "" if the file is
// absent or names no URL.
func resolveConfigFileURL() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	cfgPath := filepath.Join(home, ".graphctl", "config.yaml")

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return ""
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}

	resolvedURL := cfg.URL

	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}

		if p, ok := cfg.Profiles[profileName]; ok && p.URL != "" {
			resolvedURL = p.URL
		}
	}

	return resolvedURL
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
