// Package detector ties the catalog, fuzzy lookup, OCR, camera capture and
// lookup history together for the CLI and the HTTP API.
//
// A Service owns the current catalog. Rebuilds replace it wholesale, so
// callers holding an older *catalog.Catalog keep a consistent snapshot.
package detector
