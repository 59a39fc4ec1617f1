// Package main provides the CLI entry point for jsone, a tool that renders
// a JSON-E-style template against a JSON context.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/freeeve/jsone"
)

type config struct {
	templatePath string
	contextPath  string
	outputPath   string
	now          string
	indent       int
}

func main() {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:           "jsone --template <file> [--context <file>] [flags]",
		Short:         "Render a jsone template against a JSON context",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.templatePath, "template", "t", "", "path to the template file, JSON or YAML by extension (required; \"-\" for stdin)")
	flags.StringVarP(&cfg.contextPath, "context", "c", "", "path to the context file, JSON or YAML by extension (defaults to {})")
	flags.StringVarP(&cfg.outputPath, "output", "o", "-", "output path (\"-\" for stdout)")
	flags.StringVar(&cfg.now, "now", "", "pin the `now` binding to this RFC3339 timestamp instead of the system clock")
	flags.IntVar(&cfg.indent, "indent", 2, "number of spaces to indent the rendered JSON; 0 for compact output")
	_ = rootCmd.MarkFlagRequired("template")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	if cfg.now != "" {
		t, err := time.Parse(time.RFC3339, cfg.now)
		if err != nil {
			return fmt.Errorf("invalid --now value: %w", err)
		}
		jsone.UseFixedNowAt(t)
	}

	template, err := readDoc(cfg.templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	context := map[string]any{}
	if cfg.contextPath != "" {
		ctxAny, err := readDoc(cfg.contextPath)
		if err != nil {
			return fmt.Errorf("read context: %w", err)
		}
		asMap, ok := ctxAny.(map[string]any)
		if !ok {
			return fmt.Errorf("context must be a JSON object")
		}
		context = asMap
	}

	rendered, err := jsone.Render(template, context)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var out []byte
	if cfg.indent > 0 {
		prefix := ""
		indent := ""
		for range cfg.indent {
			indent += " "
		}
		out, err = json.MarshalIndent(rendered, prefix, indent)
	} else {
		out, err = json.Marshal(rendered)
	}
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out = append(out, '\n')

	if cfg.outputPath == "" || cfg.outputPath == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(cfg.outputPath, out, 0o644)
}

// readDoc reads path (or stdin, for "-") and decodes it as YAML or JSON
// depending on its extension: ".yaml"/".yml" use goccy/go-yaml, anything
// else (including stdin, which has no extension to sniff) uses
// encoding/json. YAML is a superset of JSON in goccy/go-yaml's decoder, so
// this only changes which library parses plain-JSON input, not what it
// accepts.
func readDoc(path string) (any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
