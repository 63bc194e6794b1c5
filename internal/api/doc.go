// Package api serves the detector over HTTP with gin.
//
// # Routes
//
//	GET  /api/status            dependency and catalog summary
//	GET  /api/catalog           every catalog entry in catalog order
//	POST /api/catalog/rebuild   rescan folders and rewrite the cache
//	GET  /api/matches?q=        fuzzy lookup (limit, min optional)
//	POST /api/ocr               multipart "image" upload, recognize then look up
//	POST /api/scan              capture a camera frame, recognize then look up
//	GET  /api/preview?path=     PNG thumbnail of a catalog book
//	GET  /api/history           recent lookups (limit optional)
//
// Errors are returned as {"error": "..."}. Every response carries an
// X-Request-ID header, echoed from the request when present, and the same id
// is attached to log records as correlation_id.
//
// Previews are only rendered for paths present in the current catalog.
package api
