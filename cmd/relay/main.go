// Package main is the entry point for the git-relay CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/cli"
	"github.com/runoshun/git-relay/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	dir := repoArg(args)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	// Create dependency injection container
	container, err := app.New(dir)
	if err != nil {
		// Allow running without git repo for help/version
		if errors.Is(err, domain.ErrNotGitRepository) {
			return runWithoutContainer(args, err)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runWithoutContainer handles cases where git repo is not found.
func runWithoutContainer(args []string, gitErr error) error {
	if !canRunWithoutGit(args) {
		return gitErr
	}
	rootCmd := cli.NewRootCommand(nil, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func canRunWithoutGit(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" || args[0] == "completion" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// repoArg returns the value of --repo, which must be known before the container exists.
func repoArg(args []string) string {
	flag := "--" + cli.RepoFlag
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v
		}
	}
	return ""
}
