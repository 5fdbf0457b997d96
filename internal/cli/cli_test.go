package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/internal/config"
	"github.com/philips-software/bom-base-sub000/pkg/cache"
	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

func testCLI() *CLI {
	return &CLI{Logger: log.NewWithOptions(io.Discard, log.Options{})}
}

// offlineConfig returns a configuration that never touches the network.
func offlineConfig() *config.Config {
	cfg := config.Default()
	cfg.Cache.Driver = cache.DriverNone
	cfg.Harvest.Sources = nil
	cfg.Scanner.Enabled = false
	cfg.Curation.Watch = false
	return cfg
}

func TestRootCommandSubcommands(t *testing.T) {
	root := testCLI().RootCommand()

	for _, name := range []string{"serve", "enrich", "show", "scan", "cache", "version", "completion"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error: %v", name, err)
			}
			if cmd.Name() != name {
				t.Errorf("Find(%q) = %q", name, cmd.Name())
			}
		})
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should have a --config flag")
	}
}

func TestVersionCommand(t *testing.T) {
	root := testCLI().RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), appName+" ") {
		t.Errorf("version output = %q", buf.String())
	}
}

func TestEnrichRejectsBadPURL(t *testing.T) {
	root := testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"enrich", "left-pad"})

	err := root.Execute()
	if !errors.Is(err, errors.ErrCodeInvalidPURL) {
		t.Errorf("Execute() error = %v, want %s", err, errors.ErrCodeInvalidPURL)
	}
}

func TestScanReport(t *testing.T) {
	report := filepath.Join("..", "..", "pkg", "scanner", "testdata", "scancode-v32.json")
	root := testCLI().RootCommand()
	root.SetArgs([]string{"scan", "--report", report, "left-pad"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
}

func TestScanReportInvalid(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(report, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	root := testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"scan", "--report", report, "."})

	if err := root.Execute(); !errors.Is(err, errors.ErrCodeSource) {
		t.Errorf("Execute() error = %v, want %s", err, errors.ErrCodeSource)
	}
}

func TestShowUnknownPackage(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, offlineConfig(), testCLI().Logger, false)
	if err != nil {
		t.Fatalf("newApp() error: %v", err)
	}
	defer a.Close(ctx)

	err = testCLI().printPackages(ctx, a, []purl.PURL{purl.MustParse("pkg:npm/left-pad@1.3.0")}, true)
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("printPackages() error = %v, want %s", err, errors.ErrCodePackageNotFound)
	}
}

func TestAppAppliesCurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curations.yaml")
	data := "packages:\n  - purl: pkg:npm/left-pad@1.3.0\n    values:\n      declared_license: MIT\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := offlineConfig()
	cfg.Curation.File = path

	ctx := context.Background()
	a, err := newApp(ctx, cfg, testCLI().Logger, true)
	if err != nil {
		t.Fatalf("newApp() error: %v", err)
	}
	defer a.Close(ctx)

	if err := a.registry.Wait(ctx); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	attrs, err := a.registry.Attributes(ctx, purl.MustParse("pkg:npm/left-pad@1.3.0"))
	if err != nil {
		t.Fatalf("Attributes() error: %v", err)
	}
	for _, attr := range attrs {
		if attr.Field != meta.DeclaredLicense {
			continue
		}
		if attr.Value.Text() != "MIT" || attr.Score != meta.Truth {
			t.Errorf("declared_license = %q@%d, want MIT@%d", attr.Value.Text(), attr.Score, meta.Truth)
		}
		return
	}
	t.Error("declared_license was not curated")
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		score meta.Trust
		want  string
	}{
		{meta.Truth, "[100 truth]"},
		{meta.Likely, "[60 likely]"},
		{65, "[65 likely]"},
		{30, "[30 maybe]"},
		{99, "[99 truth]"},
	}
	for _, tt := range tests {
		if got := formatScore(tt.score); !strings.Contains(got, tt.want) {
			t.Errorf("formatScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestTrustStyle(t *testing.T) {
	if !trustStyle(meta.Truth).GetBold() {
		t.Error("truth scores should render bold")
	}
	if trustStyle(meta.Maybe).GetBold() {
		t.Error("low scores should not render bold")
	}
}
