// Package maven provides an HTTP client for Maven Central.
//
// # Overview
//
// Artifacts are identified by groupId, artifactId and version. Metadata is
// read from the version's POM (name, description, url, licenses, scm,
// developers, organization). The search API is only consulted to resolve
// the latest version when none is given.
//
// # Usage
//
//	client := maven.NewClient(c, 24*time.Hour)
//	rel, err := client.FetchRelease(ctx, "com.google.guava", "guava", "32.1.3-jre", false)
//
// # Limitations
//
// Properties (${...}) and parent POMs are not resolved; fields inherited
// from a parent are reported empty.
package maven
