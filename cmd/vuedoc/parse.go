package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vuedoc/internal/extractor"
	"vuedoc/internal/generator"
)

var (
	parseFormat string
	parseStrict bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Extract the documentation of component files and print it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, ok := generator.ParseFormat(parseFormat)
		if !ok {
			return fmt.Errorf("unknown format %q", parseFormat)
		}
		opts, err := cfg.ScriptOptions(newLogger(cfg))
		if err != nil {
			return err
		}
		root, err := cfg.RootDir()
		if err != nil {
			return err
		}

		ext := extractor.NewExtractor(opts)
		var docs []*extractor.ComponentDoc
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			doc, err := ext.ExtractFromFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			printMessages(os.Stderr, root, doc)
			docs = append(docs, doc)
		}

		switch format {
		case generator.FormatJSON:
			data, err := generator.RenderJSON(docs)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(data); err != nil {
				return err
			}
		default:
			gen := generator.NewMarkdownGenerator(root)
			for _, doc := range docs {
				fmt.Fprint(os.Stdout, gen.RenderComponent(doc))
			}
		}

		if parseStrict {
			for _, doc := range docs {
				if doc.HasErrors() {
					return fmt.Errorf("%s: documented with errors", relPath(root, doc.Filepath))
				}
			}
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "Output format: json or markdown")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "Exit with an error when a file has error messages")
}
