// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the larkdown CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/larkdown/internal/secrets"
	"github.com/meshintel/larkdown/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the larkdown CLI.
var rootCmd = &cobra.Command{
	Use:   "larkdown",
	Short: "Export Lark documents as Markdown",
	Long: `larkdown fetches documents from the Lark (Feishu) open API, converts
their block trees to Markdown, and saves the results locally.

Each operation is a subcommand: export pulls documents through the API,
convert renders an already-fetched block dump, and history queries past
exports.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./larkdown.yaml or ~/.config/larkdown/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("larkdown")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "larkdown"))
		}
	}

	viper.SetEnvPrefix("LARKDOWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// apiConfig builds the fetch client configuration. Token precedence:
// --token flag, then .secrets/lark-access-token, then the config file or
// LARKDOWN_API_ACCESS_TOKEN.
func apiConfig(tokenFlag string) (types.APIConfig, error) {
	token := tokenFlag
	if token == "" {
		token = loadedSecrets[secrets.LarkAccessToken]
	}
	if token == "" {
		token = viper.GetString("api.access_token")
	}
	if token == "" {
		return types.APIConfig{}, fmt.Errorf("no access token: pass --token, create %s, or set api.access_token",
			filepath.Join(secrets.DefaultDir, secrets.LarkAccessToken))
	}

	cfg := types.APIConfig{
		AccessToken: token,
		PageSize:    viper.GetInt("api.page_size"),
		MaxRetries:  viper.GetInt("api.max_retries"),
	}
	cfg.Timeout = viper.GetDuration("api.timeout")
	cfg.UserAgent = viper.GetString("api.user_agent")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "larkdown/" + version
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
