// Package preview renders first-page thumbnails for catalog books and opens
// book files with the platform viewer.
//
// PDFs go through pdftoppm; raster images are decoded directly. Thumbnails
// are cached under paths.thumbnail_dir keyed by source path, modification
// time and size, so a replaced file renders again.
package preview
