package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philips-software/bom-base-sub000/pkg/api"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// enrichCommand creates the enrich command.
func (c *CLI) enrichCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "enrich <purl>...",
		Short: "Harvest metadata for packages and print the result",
		Long: `Enrich creates each package, lets every configured harvester run until the
cascade settles, and prints the resulting attributes.

Example:
  bombase enrich pkg:npm/left-pad@1.3.0 pkg:pypi/requests@2.31.0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purls, err := parsePURLs(args)
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, c.Logger, true)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			prog := newProgress(c.Logger)
			spinner := newSpinner(ctx, fmt.Sprintf("Enriching %d package(s)...", len(purls))).
				WithStatus(func() string { return fmt.Sprintf("(%d pending)", a.registry.Pending()) })
			spinner.Start()
			for _, p := range purls {
				if err := a.registry.Edit(ctx, p, func(*meta.Editor) error { return nil }); err != nil {
					spinner.StopWithError(err.Error())
					return err
				}
			}
			err = a.registry.Wait(ctx)
			spinner.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Enriched %d package(s)", len(purls)))

			return c.printPackages(ctx, a, purls, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <purl>...",
		Short: "Print the stored attributes of packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purls, err := parsePURLs(args)
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, c.Logger, false)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			return c.printPackages(ctx, a, purls, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func parsePURLs(args []string) ([]purl.PURL, error) {
	out := make([]purl.PURL, 0, len(args))
	for _, arg := range args {
		p, err := purl.Parse(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *CLI) printPackages(ctx context.Context, a *app, purls []purl.PURL, asJSON bool) error {
	var out []api.PackageResponse
	for _, p := range purls {
		attrs, err := a.registry.Attributes(ctx, p)
		if err != nil {
			return err
		}
		out = append(out, api.PackageResponse{PURL: p.Key(), Attributes: attrs})
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for i, pkg := range out {
		if i > 0 {
			printNewline()
		}
		printPackage(pkg.PURL, pkg.Attributes)
	}
	return nil
}

// printPackage prints one package as a field table.
func printPackage(key string, attrs []meta.AttributeState) {
	fmt.Println(StyleTitle.Render(key))
	if len(attrs) == 0 {
		printDetail("no attributes")
		return
	}
	for _, a := range attrs {
		if a.Value.IsEmpty() {
			continue
		}
		printAttribute(a.Field.String(), a.Value.String(), a.Score)
		if !a.AltValue.IsEmpty() {
			printDetail("%-18s also seen: %s (%s)", "", a.AltValue.String(), a.AltScore.Level())
		}
	}
}
