// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// This package fetches release metadata from PyPI (https://pypi.org), the
// official repository for Python packages.
//
// # Usage
//
//	client := pypi.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "fastapi", "0.104.1", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rel.DownloadURL, rel.SHA256)
//
// # Name Normalization
//
// Package names are normalized following PEP 503: lowercase, with
// underscores replaced by hyphens.
//
// # Licenses
//
// The declared license prefers the PEP 639 "license_expression" field, then
// the trove classifier, then the free-text "license" field when it is short.
package pypi
