package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/registry"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

const leftPad = "pkg:npm/left-pad@1.3.0"

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *registry.Registry) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	reg := registry.New(store.NewMemory(), registry.Options{Logger: logger})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		reg.Close(ctx)
	})
	opts.Logger = logger
	srv := httptest.NewServer(NewServer(reg, opts))
	t.Cleanup(srv.Close)
	return srv, reg
}

func packageURL(srv *httptest.Server, p string) string {
	return srv.URL + "/packages/" + url.PathEscape(p)
}

func do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestGetUnknownPackage(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := do(t, http.MethodGet, packageURL(srv, leftPad), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decode[errorResponse](t, resp)
	if body.Code != errors.ErrCodePackageNotFound {
		t.Errorf("code = %s", body.Code)
	}
}

func TestCreateAndUpdate(t *testing.T) {
	srv, reg := newTestServer(t, Options{})

	resp := do(t, http.MethodPost, packageURL(srv, leftPad), "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("create status = %d, want 202", resp.StatusCode)
	}

	resp = do(t, http.MethodPut, packageURL(srv, leftPad)+"/attributes/declared_license", `{"value":"MIT","score":60}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}
	body := decode[PackageResponse](t, resp)
	if body.PURL != leftPad || len(body.Attributes) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if a := body.Attributes[0]; a.Field != meta.DeclaredLicense || a.Value.Text() != "MIT" || a.Score != meta.Likely {
		t.Errorf("attribute = %+v", a)
	}

	v, ok, err := reg.Get(context.Background(), purl.MustParse(leftPad), meta.DeclaredLicense)
	if err != nil || !ok || v.Text() != "MIT" {
		t.Errorf("registry value = %v, %v, %v", v, ok, err)
	}
}

func TestPutAttributeValidation(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		name   string
		target string
		body   string
		code   errors.Code
	}{
		{"bad purl", srv.URL + "/packages/left-pad/attributes/title", `{"value":"x","score":40}`, errors.ErrCodeInvalidPURL},
		{"unknown field", packageURL(srv, leftPad) + "/attributes/colour", `{"value":"x","score":40}`, errors.ErrCodeInvalidField},
		{"bad json", packageURL(srv, leftPad) + "/attributes/title", `{"value":`, errors.ErrCodeInvalidInput},
		{"score too high", packageURL(srv, leftPad) + "/attributes/title", `{"value":"x","score":101}`, errors.ErrCodeInvalidInput},
		{"zero score", packageURL(srv, leftPad) + "/attributes/title", `{"value":"x"}`, errors.ErrCodeInvalidInput},
		{"wrong kind", packageURL(srv, leftPad) + "/attributes/home_page", `{"value":["a"],"score":40}`, errors.ErrCodeInvalidValue},
		{"bad uri", packageURL(srv, leftPad) + "/attributes/home_page", `{"value":"ftp://x","score":40}`, errors.ErrCodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, tt.target, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if body := decode[errorResponse](t, resp); body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestListPackages(t *testing.T) {
	srv, reg := newTestServer(t, Options{})
	ctx := context.Background()
	for _, p := range []string{leftPad, "pkg:npm/right-pad@1.0.0", "pkg:pypi/requests@2.31.0"} {
		if err := reg.Edit(ctx, purl.MustParse(p), func(*meta.Editor) error { return nil }); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?type=npm", 2},
		{"?type=npm&name=left", 1},
		{"?limit=1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/packages"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := decode[ListResponse](t, resp).Packages; len(got) != tt.want {
				t.Errorf("packages = %v, want %d", got, tt.want)
			}
		})
	}

	resp := do(t, http.MethodGet, srv.URL+"/packages?limit=x", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestMetricsAndCORS(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "bombase_up 1\n")
	})
	srv, _ := newTestServer(t, Options{Metrics: metrics, CORSOrigins: []string{"https://ui.example.com"}})

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "")
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "bombase_up") {
		t.Errorf("metrics body = %q", data)
	}

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/packages", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	pre, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer pre.Body.Close()
	if got := pre.Header.Get("Access-Control-Allow-Origin"); got != "https://ui.example.com" {
		t.Errorf("allow origin = %q", got)
	}
}
