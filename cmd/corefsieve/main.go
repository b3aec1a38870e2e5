// Package main provides the corefsieve CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "corefsieve",
		Short: "corefsieve - multi-pass sieve coreference resolution",
		Long: `corefsieve groups the noun-phrase mentions of annotated documents into
entities by running an ordered cascade of sieves, from the most precise
(exact string match, appositions, acronyms) to the most permissive
(pronouns), optionally followed by a statistical sieve.

Input documents are JSON (one object per line) carrying tokens, parse
trees and detected mentions with their attributes.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("language", "", "Language: en or zh (overrides config)")
	rootCmd.PersistentFlags().String("dict-dir", "", "Directory of plain-text lexical resources")
	rootCmd.PersistentFlags().String("store-dir", "", "BadgerDB lexicon built by 'dict import'")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int("workers", 0, "Documents resolved concurrently")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "corefsieve v%s (%s)\n", version, commit)
		},
	})

	// Resolve command
	resolveCmd := &cobra.Command{
		Use:   "resolve [documents.jsonl...]",
		Short: "Resolve coreference in JSON documents",
		Long:  "Resolve coreference in JSON documents read from files or stdin and print the chains",
		RunE:  runResolve,
	}
	resolveCmd.Flags().String("format", "json", "Output format: json or conll")
	resolveCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	resolveCmd.Flags().Bool("keep-singletons", false, "Include single-mention chains")
	rootCmd.AddCommand(resolveCmd)

	// Eval command
	evalCmd := &cobra.Command{
		Use:   "eval [suite.jsonl...]",
		Short: "Score resolution against gold cluster ids",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().String("output", "summary", "Output format: summary, detailed, json, compact")
	evalCmd.Flags().String("save", "", "Save results to JSON file")
	evalCmd.Flags().String("threshold", "", "Override thresholds (muc=0.5,b3=0.5,pairwise=0.3)")
	rootCmd.AddCommand(evalCmd)

	// Dict command
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Lexicon store operations",
	}
	dictCmd.AddCommand(&cobra.Command{
		Use:   "import [directory]",
		Short: "Import plain-text resources into the lexicon store",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictImport,
	})
	rootCmd.AddCommand(dictCmd)

	// Config command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE:  runConfig,
	})

	return rootCmd
}
