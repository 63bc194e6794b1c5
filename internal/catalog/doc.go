// Package catalog derives the book catalog from filenames and keeps it in a
// CSV cache.
//
// Book files are named Title_Author_Year_Pages_ID.ext. The builder scans the
// configured folders in order, parses every regular file whose name has at
// least five underscore-separated segments, and persists the result. Folder
// contents are never opened. LoadOrBuild trusts an existing cache file and
// only scans when the cache is missing or unreadable.
//
// A Catalog is immutable. Sessions replace it wholesale after a rebuild.
package catalog
