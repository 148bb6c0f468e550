// Package extract derives the persisted features of a single image
// file: content hash (EXIF-stripped for JPEG), pixel dimensions,
// perceptual hash, camera metadata, creation timestamp, and a WebP
// thumbnail. Extraction is pure per call; the caller persists.
package extract
