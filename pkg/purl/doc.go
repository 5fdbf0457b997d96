// Package purl parses and formats package coordinates.
//
// # Overview
//
// A coordinate identifies one version of one package using the Package-URL
// convention:
//
//	pkg:<type>[/<namespace>]/<name>@<version>[?qualifiers][#subpath]
//
// Each path segment is percent-decoded on its own, so a namespace holding a
// slash (for example a Go module path) must encode it as %2F:
//
//	pkg:golang/github.com%2Fspf13/cobra@v1.10.1
//
// Type, name and version are mandatory. More than two name parts after the
// type is rejected, as is a missing version.
//
// # Identity
//
// Two coordinates denote the same package when their [PURL.Key] values are
// equal. Qualifiers and subpath are carried along for registry lookups but
// are not part of the identity.
package purl
