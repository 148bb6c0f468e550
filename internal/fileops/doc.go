// Package fileops provides the filesystem move/copy/recycle primitives
// used by the pipeline, the duplicate resolver, and the sorter.
//
// Moves always try an atomic rename first and fall back to copy+delete
// when source and destination are on different filesystems. Recycling is
// a soft-delete: files are moved into a holding directory, never erased.
package fileops
