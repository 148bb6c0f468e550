// Package thumbs is the in-memory thumbnail store. Thumbnails are
// keyed by the content hash of their source image, so identical files
// cost one entry, and records reference them with memory:// URIs.
package thumbs
