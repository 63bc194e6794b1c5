// Package textutil provides the string comparison and normalization helpers
// shared by the catalog and lookup packages.
//
// The primary use cases are:
//   - Scoring how similar an OCR'd query is to a catalog title
//   - Normalizing Unicode text to NFC before comparison
//   - Sanitizing names for thumbnail and upload files
//
// Similarity is the Ratcliff/Obershelp ratio 2*M/(len(a)+len(b)) computed
// over runes, where M counts the characters in the matching blocks found by
// repeatedly taking the longest common substring. Long second sequences
// (200 runes or more) ignore very frequent runes when seeding matches.
package textutil
