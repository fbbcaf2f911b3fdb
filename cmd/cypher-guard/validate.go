package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	cypherguard "github.com/neo4j-field/cypher-guard"
	"github.com/neo4j-field/cypher-guard/grammar"
)

// ErrQueryInvalid is returned (exit status 1) when a query fails validation.
var ErrQueryInvalid = errors.New("query is not valid")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check a query for syntax errors only",
		ArgsUsage: "[query]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			query, err := readQuery(cmd)
			if err != nil {
				return err
			}

			if err := cypherguard.CheckSyntax(query); err != nil {
				var perr *grammar.ParseError
				if errors.As(err, &perr) {
					fmt.Fprintf(os.Stderr, "%s (offset %d)\n", perr.Message, perr.Offset)
				}
				return ErrQueryInvalid
			}

			fmt.Println("syntax ok")
			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a query against a schema",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "path to the schema JSON file",
				Sources:  cli.EnvVars("CYPHER_GUARD_SCHEMA"),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output diagnostics as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			query, err := readQuery(cmd)
			if err != nil {
				return err
			}

			schemaPath := cmd.String("schema")
			logger.Debug("loading schema", zap.String("path", schemaPath))

			dbSchema, err := cypherguard.LoadSchemaFile(schemaPath)
			if err != nil {
				return err
			}
			logger.Debug("schema loaded",
				zap.Int("labels", len(dbSchema.NodeProps)),
				zap.Int("relationship_types", len(dbSchema.RelProps)))

			diags, err := cypherguard.Validate(query, dbSchema)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(diags); err != nil {
					return err
				}
			} else {
				for _, d := range diags {
					fmt.Println(d.Message)
				}
			}

			if len(diags) > 0 {
				return ErrQueryInvalid
			}
			if !cmd.Bool("json") {
				fmt.Println("valid")
			}
			return nil
		},
	}
}

func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Report whether a query reads or writes",
		ArgsUsage: "[query]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			query, err := readQuery(cmd)
			if err != nil {
				return err
			}

			write, err := cypherguard.IsWrite(query)
			if err != nil {
				return err
			}
			if write {
				fmt.Println("write")
			} else {
				fmt.Println("read")
			}
			return nil
		},
	}
}
