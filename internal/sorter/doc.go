// Package sorter relocates classified images into a chronological
// <year>/<month> directory layout derived from each record's capture
// time.
package sorter
