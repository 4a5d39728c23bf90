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

	"github.com/pdiddy/slr-engine/internal/retrieve"
	"github.com/pdiddy/slr-engine/pkg/types"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve ranked evidence notes for a query",
	Long: `Retrieve embeds the query and returns the evidence notes report
generation would use: chunks ranked across all indexed documents, capped
per document, and trimmed. Documents excluded from retrieval are listed
with the reason.`,
	RunE: runRetrieve,
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query required")
	}

	resources, loadStatuses, err := retrieve.LoadResources(projectIndexDir(cmd))
	if err != nil {
		return err
	}

	provider, err := embeddingProvider(cmd)
	if err != nil {
		return err
	}

	notes, statuses, err := retrieve.Retrieve(context.Background(), provider, resources, query, retrieveOptions(cmd))
	if err != nil {
		return err
	}

	// Loadable resources reappear in the retrieval statuses; keep only the
	// load failures from the first pass.
	var merged []retrieve.ResourceStatus
	for _, st := range loadStatuses {
		if !st.Used {
			merged = append(merged, st)
		}
	}
	merged = append(merged, statuses...)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(notes, merged, jsonOutput)
}

// retrieveOptions builds retrieval options from flags with config fallback.
func retrieveOptions(cmd *cobra.Command) retrieve.Options {
	cfg := types.RetrievalConfig{
		TotalPassages: viper.GetInt("retrieval.total_passages"),
		MaxPerDoc:     viper.GetInt("retrieval.max_per_doc"),
		Trim:          viper.GetInt("retrieval.trim"),
	}
	opts := retrieve.OptionsFromConfig(cfg)

	if v, _ := cmd.Flags().GetInt("total-passages"); v > 0 {
		opts.TotalPassages = v
	}
	if v, _ := cmd.Flags().GetInt("max-per-doc"); v > 0 {
		opts.MaxPerDoc = v
	}
	if v, _ := cmd.Flags().GetInt("trim"); v > 0 {
		opts.Trim = v
	}
	return opts
}

func formatRetrieveOutput(notes []types.EvidenceNote, statuses []retrieve.ResourceStatus, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Notes     []types.EvidenceNote      `json:"notes"`
			Resources []retrieve.ResourceStatus `json:"resources"`
		}{Notes: notes, Resources: statuses})
	}

	for _, st := range statuses {
		if !st.Used {
			fmt.Fprintf(os.Stdout, "skipped %s: %s\n", st.Stem, st.Reason)
		}
	}

	if len(notes) == 0 {
		fmt.Println("No evidence found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-10s  %s\n", "Note", "Paper", "Score", "Text")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, n := range notes {
		paper := n.PaperKey
		if len(paper) > 20 {
			paper = paper[:17] + "..."
		}
		text := strings.ReplaceAll(n.Text, "\n", " ")
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-10.4f  %s\n", n.NoteID, paper, n.Score, text)
	}

	fmt.Fprintf(os.Stdout, "\n%d notes\n", len(notes))
	return nil
}

func init() {
	retrieveCmd.Flags().Int("total-passages", 0, "maximum evidence notes to return (0 = default)")
	retrieveCmd.Flags().Int("max-per-doc", 0, "maximum notes per document (0 = default)")
	retrieveCmd.Flags().Int("trim", 0, "hard character bound per note (0 = default)")
	retrieveCmd.Flags().String("embedding-model", "", "embedding model identifier")
	retrieveCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(retrieveCmd)
}
