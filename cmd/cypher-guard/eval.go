package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	cypherguard "github.com/neo4j-field/cypher-guard"
	"github.com/neo4j-field/cypher-guard/runner"
)

// ErrEvalFailed is returned when any corpus query misses its expectation.
var ErrEvalFailed = errors.New("evaluation had failures")

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "Evaluate a directory of YAML query files against a schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "path to the schema JSON file",
				Sources:  cli.EnvVars("CYPHER_GUARD_SCHEMA"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "queries",
				Aliases: []string{"q"},
				Usage:   "directory containing query YAML files",
				Value:   "queries",
			},
			&cli.BoolFlag{
				Name:    "detailed",
				Aliases: []string{"d"},
				Usage:   "show per-query results",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output results as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
		},
		Action: runEval,
	}
}

func runEval(_ context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbSchema, err := cypherguard.LoadSchemaFile(cmd.String("schema"))
	if err != nil {
		return err
	}
	logger.Debug("schema loaded",
		zap.Strings("labels", dbSchema.Labels()),
		zap.Strings("relationship_types", dbSchema.RelationshipTypes()))

	queriesDir := cmd.String("queries")
	logger.Debug("walking corpus", zap.String("dir", queriesDir))

	result, err := runner.New(dbSchema).RunDir(queriesDir)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := runner.RenderJSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		f := runner.NewFormatter(os.Stdout).WithDetails(cmd.Bool("detailed"))
		if cmd.Bool("no-color") {
			f = f.WithColor(false)
		}
		if err := f.Render(result); err != nil {
			return err
		}
	}

	if result.Stats.Failed > 0 {
		return ErrEvalFailed
	}
	return nil
}
