package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/philips-software/bom-base-sub000/pkg/license"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/scanner"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var report string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory for licenses and print the merged detections",
		Long: `Scan runs the configured ScanCode command over a directory, merges the hits
per license expression and prints the detections with their aggregate
confidence. With --report an existing ScanCode JSON report is read instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			var hits []scanner.Hit
			if report != "" {
				data, err := os.ReadFile(report)
				if err != nil {
					return fmt.Errorf("read report: %w", err)
				}
				if hits, err = scanner.ParseScanCode(data, filepath.Base(dir)); err != nil {
					return err
				}
			} else {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				prog := newProgress(c.Logger)
				spinner := newSpinner(cmd.Context(), "Scanning "+dir+"...")
				spinner.Start()
				hits, err = scanner.NewScanCode(cfg.Scanner.Command, c.Logger).Scan(cmd.Context(), dir)
				spinner.Stop()
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Scanned %s", dir))
			}

			printDetections(scanner.Merge(hits))
			return nil
		},
	}

	cmd.Flags().StringVar(&report, "report", "", "read an existing ScanCode JSON report")
	return cmd
}

// printDetections prints merged detections and their aggregate.
func printDetections(set *license.Set) {
	if set.Len() == 0 {
		printInfo("No licenses detected")
		return
	}
	for _, d := range set.Detections() {
		line := fmt.Sprintf("%-24s %5.1f  x%-3d %s:%d-%d", d.License, d.Score, d.Confirmations, d.File, d.StartLine, d.EndLine)
		if d.Ignored {
			fmt.Println("  " + StyleDim.Render(line+"  (ignored)"))
			continue
		}
		fmt.Println("  " + StyleValue.Render(line))
	}
	printNewline()
	confidence := min(set.Confidence(), meta.Truth-1)
	printAttribute("expression", set.Expression(), confidence)
}
