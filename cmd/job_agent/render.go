package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/layout"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Lay out a text document and report its pagination",
	Long: `Runs the layout engine over a plain-text document and prints how it
paginates: page count and the classified content per page. Useful for
checking how a generated document will flow before encoding it.`,
	RunE: runRender,
}

var (
	renderInputPath string
	renderTitle     string
	renderMode      string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInputPath, "input", "i", "", "Path to text file to lay out")
	renderCmd.Flags().StringVarP(&renderTitle, "title", "t", "Document", "Document title for the header band")
	renderCmd.Flags().StringVarP(&renderMode, "mode", "m", "auto", "Content interpretation: auto, prose or qa")

	_ = renderCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(renderCmd)
}

func parseMode(s string) (layout.Mode, error) {
	switch strings.ToLower(s) {
	case "auto":
		return layout.ModeAuto, nil
	case "prose":
		return layout.ModeProse, nil
	case "qa":
		return layout.ModeQA, nil
	default:
		return layout.ModeAuto, fmt.Errorf("unknown mode %q (want auto, prose or qa)", s)
	}
}

func runRender(_ *cobra.Command, _ []string) error {
	mode, err := parseMode(renderMode)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(renderInputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	if renderTitle == "Document" {
		base := filepath.Base(renderInputPath)
		renderTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	doc := layout.NewEngine().Render(renderTitle, string(text), mode)

	fmt.Printf("%q lays out across %d page(s)\n", renderTitle, doc.PageCount())
	for i, page := range doc.Pages() {
		texts := 0
		for _, op := range page.Ops() {
			if op.Kind == layout.OpText {
				texts++
			}
		}
		fmt.Printf("  page %d: %d ops, %d text lines\n", i+1, len(page.Ops()), texts)
	}
	return nil
}
