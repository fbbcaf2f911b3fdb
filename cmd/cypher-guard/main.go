// Command cypher-guard checks Cypher queries for syntax and schema
// conformance from the command line, and evaluates query corpora.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	cmd := &cli.Command{
		Name:  "cypher-guard",
		Usage: "Validate Cypher queries against a graph schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose logging",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			validateCommand(),
			classifyCommand(),
			evalCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger; debug output appears only with --verbose.
func newLogger(cmd *cli.Command) (*zap.Logger, error) {
	if !cmd.Bool("verbose") {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// readQuery returns the query from the first positional argument, or stdin
// when the argument is absent or "-".
func readQuery(cmd *cli.Command) (string, error) {
	arg := cmd.Args().First()
	if arg != "" && arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}
	return string(data), nil
}
