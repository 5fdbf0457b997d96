// Package harvest connects external metadata sources to the registry's
// cascade.
//
// Every harvester is a [registry.Listener]. It looks at an event, decides
// from the changed fields whether its source has something to add, and
// returns a task that fetches the data and writes it through the editor at
// the trust the source deserves:
//
//   - [MetadataListener] bootstraps a new package from a package registry
//     (npm, PyPI, crates.io, RubyGems, Maven Central, the Go proxy)
//   - [GitHubListener] enriches a package once its source location points
//     at a GitHub repository
//   - [LicenseScanListener] checks out the source location, scans it for
//     licenses and records the merged detections
//   - [CurationListener] applies curated values at truth
//
// Sources return [Metadata], a per-field candidate value with a per-field
// trust hint, so one [Apply] function serves every source.
//
// [registry.Listener]: github.com/philips-software/bom-base-sub000/pkg/registry.Listener
package harvest
