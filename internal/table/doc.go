// Package table implements the remote table controller: it turns search text, column
// filters, multi-column sort and scroll position into paginated fetch requests, caches
// fetched pages per request fingerprint and exposes the merged rows to a rendering layer.
package table
