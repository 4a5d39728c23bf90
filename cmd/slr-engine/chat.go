// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slr-engine/internal/chat"
	"github.com/pdiddy/slr-engine/internal/retrieve"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask a free-form question over the project's corpus",
	Long: `Chat embeds the question, pulls the closest chunks across all indexed
documents, and answers from that context. Unlike report generation there is
no per-document cap; the single best passages win regardless of source.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question required")
	}

	resources, _, err := retrieve.LoadResources(projectIndexDir(cmd))
	if err != nil {
		return err
	}
	if len(resources) == 0 {
		return fmt.Errorf("no indexed documents: run ingest first")
	}

	provider, err := embeddingProvider(cmd)
	if err != nil {
		return err
	}
	backend, model, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = viper.GetInt("retrieval.chat_top_k")
	}

	answer, err := chat.Ask(context.Background(), provider, backend, resources,
		question, model, topK, viper.GetInt("generation.max_retries"))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Println(answer.Text)
	return nil
}

func init() {
	chatCmd.Flags().Int("top-k", 0, "context passages to retrieve (0 = default)")
	chatCmd.Flags().String("model", "", "AI model identifier for generation")
	chatCmd.Flags().String("embedding-model", "", "embedding model identifier")
	chatCmd.Flags().Bool("json", false, "output answer and context as JSON")

	rootCmd.AddCommand(chatCmd)
}
