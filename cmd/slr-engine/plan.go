// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/slr-engine/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Draft the review protocol (objective and research questions)",
	Long: `Plan drafts the protocol stage of a review. The objective subcommand
turns a topic into a focused objective statement; the questions subcommand
derives a research question list from an objective and writes it to the
project's questions file for report generation.`,
}

// --- objective subcommand ---

var planObjectiveCmd = &cobra.Command{
	Use:   "objective [topic]",
	Short: "Draft a review objective for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlanObjective,
}

func runPlanObjective(cmd *cobra.Command, args []string) error {
	backend, model, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	objective, err := plan.Objective(context.Background(), backend, model,
		strings.Join(args, " "), viper.GetInt("generation.max_retries"))
	if err != nil {
		return err
	}

	fmt.Println(objective)
	return nil
}

// --- questions subcommand ---

var planQuestionsCmd = &cobra.Command{
	Use:   "questions [objective]",
	Short: "Derive research questions from an objective",
	Long: `Questions asks the generation service for a research question list
covering the objective and writes it to the project's questions file.
Each question carries a purpose statement explaining its contribution.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlanQuestions,
}

func runPlanQuestions(cmd *cobra.Command, args []string) error {
	backend, model, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	qf, err := plan.Questions(context.Background(), backend, model,
		strings.Join(args, " "), viper.GetInt("generation.max_retries"))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("marshaling questions: %w", err)
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = filepath.Join(projectDir(cmd), "questions.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing questions file: %w", err)
	}

	for i, rq := range qf.ResearchQuestions {
		fmt.Fprintf(os.Stdout, "RQ%d: %s\n", i+1, rq.Question)
	}
	fmt.Fprintf(os.Stdout, "\n%d questions written to %s\n", len(qf.ResearchQuestions), path)
	return nil
}

func init() {
	planObjectiveCmd.Flags().String("model", "", "AI model identifier for generation")

	planQuestionsCmd.Flags().String("model", "", "AI model identifier for generation")
	planQuestionsCmd.Flags().String("output", "", "path for the questions file (default: <project>/questions.yaml)")

	planCmd.AddCommand(planObjectiveCmd)
	planCmd.AddCommand(planQuestionsCmd)

	rootCmd.AddCommand(planCmd)
}
