// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the slr-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/internal/genai"
	"github.com/pdiddy/slr-engine/internal/secrets"
	"github.com/pdiddy/slr-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the slr-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "slr-engine",
	Short: "Retrieval-augmented drafting of systematic literature reviews",
	Long: `slr-engine drafts systematic literature reviews grounded in a project's
document corpus. Documents are chunked, embedded, and indexed per project;
evidence retrieval ranks chunks globally with a per-document cap so answers
draw on diverse sources.

Each pipeline stage is a subcommand: plan drafts the objective and research
questions, ingest builds the retrieval artifacts, retrieve inspects evidence
for a query, report generates and refines the review, and chat answers
free-form questions over the corpus.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./slr-engine.yaml or ~/.config/slr-engine/config.yaml)")
	rootCmd.PersistentFlags().String("projects-dir", "projects", "base directory holding one subdirectory per project")
	rootCmd.PersistentFlags().String("project", "default", "project name under projects-dir")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slr-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "slr-engine"))
		}
	}

	viper.SetEnvPrefix("SLR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// projectDir resolves the active project's base directory.
func projectDir(cmd *cobra.Command) string {
	projectsDir, _ := cmd.Flags().GetString("projects-dir")
	project, _ := cmd.Flags().GetString("project")
	return filepath.Join(projectsDir, project)
}

// projectIndexDir resolves the active project's retrieval artifact directory.
func projectIndexDir(cmd *cobra.Command) string {
	return filepath.Join(projectDir(cmd), "index")
}

// embeddingProvider builds the embedding client from flags, config, and secrets.
func embeddingProvider(cmd *cobra.Command) (*embed.OpenAIProvider, error) {
	model, _ := cmd.Flags().GetString("embedding-model")
	if model == "" {
		model = viper.GetString("embedding.model")
	}
	cfg := types.EmbeddingConfig{
		AIConfig: types.AIConfig{
			Model:   model,
			APIKey:  secretDefault("openai-api-key", viper.GetString("embedding.api_key")),
			BaseURL: viper.GetString("embedding.base_url"),
		},
		Timeout: viper.GetDuration("embedding.timeout"),
	}
	return embed.NewOpenAIProvider(cfg)
}

// generationBackend builds the generation client and resolves the chat model.
func generationBackend(cmd *cobra.Command) (*genai.OpenAIBackend, string, error) {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("generation.model")
	}
	if model == "" {
		model = "gpt-4o"
	}
	cfg := types.AIConfig{
		Model:   model,
		APIKey:  secretDefault("openai-api-key", viper.GetString("generation.api_key")),
		BaseURL: viper.GetString("generation.base_url"),
	}
	backend, err := genai.NewOpenAIBackend(cfg, viper.GetDuration("generation.timeout"))
	if err != nil {
		return nil, "", err
	}
	return backend, model, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
