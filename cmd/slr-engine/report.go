// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/internal/corpus"
	"github.com/pdiddy/slr-engine/internal/project"
	"github.com/pdiddy/slr-engine/internal/retrieve"
	"github.com/pdiddy/slr-engine/internal/synthesis"
	"github.com/pdiddy/slr-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and refine systematic literature review reports",
	Long: `Report runs the synthesis pipeline: for each research question it
retrieves evidence notes from the project's indexes and synthesizes an
answer, then composes the full review document with a landscape overview
drawn from screening-export abstracts.

Use subcommands to generate a new report or refine an existing one.`,
}

// --- generate subcommand ---

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a full review from the project's questions and indexes",
	Long: `Generate reads the project's questions file, retrieves evidence for each
question, synthesizes per-question answers, and composes the final review.
The report is written to the output directory and saved in the project
catalog. Any retrieval or generation failure aborts the whole report.`,
	RunE: runReportGenerate,
}

func runReportGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	qf, err := loadQuestionsFile(cmd)
	if err != nil {
		return err
	}

	resources, loadStatuses, err := retrieve.LoadResources(projectIndexDir(cmd))
	if err != nil {
		return err
	}
	for _, st := range loadStatuses {
		if !st.Used {
			fmt.Fprintf(os.Stdout, "skipped %s: %s\n", st.Stem, st.Reason)
		}
	}

	abstracts, err := corpus.LoadAbstracts(filepath.Join(projectDir(cmd), "data"))
	if err != nil {
		return err
	}

	provider, err := embeddingProvider(cmd)
	if err != nil {
		return err
	}
	backend, model, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	engine := &synthesis.Engine{
		Provider:   provider,
		Backend:    backend,
		Model:      model,
		MaxRetries: viper.GetInt("generation.max_retries"),
		Retrieval:  retrieveOptions(cmd),
	}

	report, err := engine.GenerateReport(ctx, resources, qf.Objective, qf.Questions(), abstracts, os.Stdout)
	if err != nil {
		return err
	}

	path, err := writeReportFile(cmd, report.Text)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "report written to %s\n", path)

	store, err := project.Open(projectDir(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveReport(ctx, project.ReportRecord{
		Objective: report.Objective,
		Questions: report.Questions,
		Text:      report.Text,
		Model:     model,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "saved as report %d\n", id)
	return nil
}

// --- refine subcommand ---

var reportRefineCmd = &cobra.Command{
	Use:   "refine [report-file]",
	Short: "Rewrite an existing report per feedback",
	Long: `Refine sends an existing report back to the generation service with
your feedback and writes the revised document next to the original with a
-refined suffix, or to --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportRefine,
}

func runReportRefine(cmd *cobra.Command, args []string) error {
	feedback, _ := cmd.Flags().GetString("feedback")
	if feedback == "" {
		return fmt.Errorf("--feedback required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	backend, model, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	refined, err := synthesis.RefineReport(context.Background(), backend, model,
		string(data), feedback, viper.GetInt("generation.max_retries"))
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		ext := filepath.Ext(args[0])
		outPath = args[0][:len(args[0])-len(ext)] + "-refined" + ext
	}
	if err := os.WriteFile(outPath, []byte(refined), 0o644); err != nil {
		return fmt.Errorf("writing refined report: %w", err)
	}

	fmt.Fprintf(os.Stdout, "refined report written to %s\n", outPath)
	return nil
}

// --- shared helpers ---

// loadQuestionsFile reads the project's research questions.
func loadQuestionsFile(cmd *cobra.Command) (*types.QuestionsFile, error) {
	path, _ := cmd.Flags().GetString("questions")
	if path == "" {
		path = filepath.Join(projectDir(cmd), "questions.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions file %s: %w", path, err)
	}
	var qf types.QuestionsFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing questions file %s: %w", path, err)
	}
	return &qf, nil
}

// writeReportFile writes text to a timestamped file in the output directory.
func writeReportFile(cmd *cobra.Command, text string) (string, error) {
	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		outDir = viper.GetString("generation.output_dir")
	}
	if outDir == "" {
		outDir = filepath.Join(projectDir(cmd), "output", "reports")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("report-%s.md", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func init() {
	reportGenerateCmd.Flags().String("questions", "", "path to questions file (default: <project>/questions.yaml)")
	reportGenerateCmd.Flags().String("output-dir", "", "directory for generated reports")
	reportGenerateCmd.Flags().String("model", "", "AI model identifier for generation")
	reportGenerateCmd.Flags().String("embedding-model", "", "embedding model identifier")
	reportGenerateCmd.Flags().Int("total-passages", 0, "maximum evidence notes per question (0 = default)")
	reportGenerateCmd.Flags().Int("max-per-doc", 0, "maximum notes per document (0 = default)")
	reportGenerateCmd.Flags().Int("trim", 0, "hard character bound per note (0 = default)")

	reportRefineCmd.Flags().String("feedback", "", "refinement instructions")
	reportRefineCmd.Flags().String("output", "", "path for the refined report")
	reportRefineCmd.Flags().String("model", "", "AI model identifier for generation")

	reportCmd.AddCommand(reportGenerateCmd)
	reportCmd.AddCommand(reportRefineCmd)

	rootCmd.AddCommand(reportCmd)
}
