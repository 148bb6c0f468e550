// Package handlers implements the JSON API over the record store: the
// stats and listing views, original-image and thumbnail serving, and
// the recycle operation with canonical re-balancing.
package handlers
