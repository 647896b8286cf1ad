// Package httpfetch is the network collaborator of the pipeline: it fetches
// catalog documents and streams package downloads to disk.
//
// Downloads are written to a .part sibling while being hashed, verified
// against the expected SHA-1 when one is supplied, and renamed into place only
// after verification. A failed attempt never leaves a partial file at the
// destination. Transient failures are retried within a bounded budget, and
// transfer progress is reported through a side channel that cannot fail the
// download.
package httpfetch
