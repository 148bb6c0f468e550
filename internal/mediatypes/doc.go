// Package mediatypes classifies candidate files by extension into
// decodable images, camera RAW formats, and everything else, and maps
// extensions to MIME types for serving originals.
package mediatypes
