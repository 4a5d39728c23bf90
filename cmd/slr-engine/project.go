// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slr-engine/internal/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect the project catalog (documents and reports)",
	Long: `Project lists what the catalog knows about the active project: which
documents have been ingested and which reports have been generated. Use
"project report [id]" to print a saved report's full text.`,
}

// --- docs subcommand ---

var projectDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List ingested documents",
	RunE:  runProjectDocs,
}

func runProjectDocs(cmd *cobra.Command, args []string) error {
	store, err := project.Open(projectDir(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.ListDocuments(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-30s  %-8s  %-6s  %s\n",
		"Stem", "Title", "Chunks", "Dim", "Ingested")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, doc := range docs {
		title := doc.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-30s  %-8d  %-6d  %s\n",
			doc.Stem, title, doc.Chunks, doc.Dim, doc.IngestedAt.Format(time.DateOnly))
	}

	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(docs))
	return nil
}

// --- reports subcommand ---

var projectReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List generated reports",
	RunE:  runProjectReports,
}

func runProjectReports(cmd *cobra.Command, args []string) error {
	store, err := project.Open(projectDir(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListReports(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Println("No reports generated.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-50s  %-10s  %-6s  %s\n",
		"ID", "Objective", "Model", "RQs", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))

	for _, rec := range recs {
		objective := rec.Objective
		if len(objective) > 50 {
			objective = objective[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-50s  %-10s  %-6d  %s\n",
			rec.ID, objective, rec.Model, len(rec.Questions), rec.CreatedAt.Format(time.DateOnly))
	}

	fmt.Fprintf(os.Stdout, "\n%d reports\n", len(recs))
	return nil
}

// --- report subcommand ---

var projectReportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Print a saved report's full text",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectReport,
}

func runProjectReport(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report id %q", args[0])
	}

	store, err := project.Open(projectDir(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetReport(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Println(rec.Text)
	return nil
}

func init() {
	projectDocsCmd.Flags().Bool("json", false, "output as JSON")
	projectReportsCmd.Flags().Bool("json", false, "output as JSON")

	projectCmd.AddCommand(projectDocsCmd)
	projectCmd.AddCommand(projectReportsCmd)
	projectCmd.AddCommand(projectReportCmd)

	rootCmd.AddCommand(projectCmd)
}
