package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/netkit/internal/report"
	"github.com/user/netkit/internal/tui"
)

// errUnsuccessful makes the process exit 1 without printing anything more.
var errUnsuccessful = errors.New("operation failed")

// run executes task, with a spinner on interactive terminals, prints the
// result and reports whether it succeeded.
func run[T any](cmd *cobra.Command, label string, task func(context.Context) T) error {
	ctx := cmd.Context()

	var result T
	if tui.Interactive(os.Stderr) {
		result = tui.RunWithSpinner(ctx, os.Stderr, label, task)
	} else {
		result = task(ctx)
	}
	return emit(cmd.OutOrStdout(), result)
}

// emit prints result in the configured format and returns errUnsuccessful
// when the result carries success=false.
func emit(w io.Writer, result interface{}) error {
	generic, err := toGeneric(result)
	if err != nil {
		return err
	}

	format := strings.ToLower(cfg.Output)
	if query != "" {
		if format == "text" || format == "markdown" {
			format = "json"
		}
		if err := printQuery(w, query, generic, format); err != nil {
			return err
		}
	} else if err := printResult(w, result, generic, format); err != nil {
		return err
	}

	if m, ok := generic.(map[string]interface{}); ok {
		if success, ok := m["success"].(bool); ok && !success {
			return errUnsuccessful
		}
	}
	return nil
}

func printResult(w io.Writer, result, generic interface{}, format string) error {
	switch format {
	case "json":
		return writeJSON(w, generic)
	case "yaml", "yml":
		return writeYAML(w, generic)
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown(result))
		return err
	case "text", "":
		_, err := io.WriteString(w, tui.Render(result))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want text, json, yaml or markdown)", format)
	}
}

// printQuery runs a jq expression over the JSON form of a result and prints
// each value it yields.
func printQuery(w io.Writer, expr string, input interface{}, format string) error {
	q, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return fmt.Errorf("query failed: %w", err)
		}

		if s, ok := v.(string); ok && format == "json" {
			fmt.Fprintln(w, s)
			continue
		}
		if format == "yaml" || format == "yml" {
			err = writeYAML(w, v)
		} else {
			err = writeJSON(w, v)
		}
		if err != nil {
			return err
		}
	}
}

// toGeneric converts a result to the maps and slices of its JSON form, the
// shape gojq and yaml both expect.
func toGeneric(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return generic, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
