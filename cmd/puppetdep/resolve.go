package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/puppetdep/puppetdep"
)

var (
	hideFile     string
	ignoreFile   string
	preambleFile string
	logLevel     string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <manifest_path>",
	Short: "Resolve a manifest and print the pinned result to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&hideFile, "hide-file", "", "file of slugs (one per line) to omit from the output")
	resolveCmd.Flags().StringVar(&ignoreFile, "ignore-file", "", "file of slugs (one per line) whose deprecation/no-version errors are demoted to warnings")
	resolveCmd.Flags().StringVar(&preambleFile, "preamble-file", "", "file of literal text to emit after the forge declaration")
	resolveCmd.Flags().StringVar(&logLevel, "loglevel", "info", "one of debug, info, warn, error")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	hide, err := readSlugFile(hideFile)
	if err != nil {
		return err
	}
	ignore, err := readSlugFile(ignoreFile)
	if err != nil {
		return err
	}
	preamble, err := readTextFile(preambleFile)
	if err != nil {
		return err
	}

	opts := []puppetdep.Option{puppetdep.WithLogger(logger)}
	if len(hide) > 0 {
		opts = append(opts, puppetdep.WithHidden(hide...))
	}
	if len(ignore) > 0 {
		opts = append(opts, puppetdep.WithIgnored(ignore...))
	}
	if preamble != "" {
		opts = append(opts, puppetdep.WithPreamble(preamble))
	}

	result, err := puppetdep.ResolveFile(context.Background(), args[0], opts...)
	if err != nil {
		return err
	}

	return puppetdep.Emit(os.Stdout, result)
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("puppetdep: unknown --loglevel %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func readSlugFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("puppetdep: open %s: %w", path, err)
	}
	defer f.Close()

	var slugs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		slugs = append(slugs, line)
	}
	return slugs, scanner.Err()
}

func readTextFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("puppetdep: open %s: %w", path, err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}
