package extract

import (
	"crypto/md5"
	"fmt"
)

const (
	jpegMarkerPrefix = 0xff
	jpegSOI          = 0xd8
	jpegEOI          = 0xd9
	jpegSOS          = 0xda
	jpegAPP1         = 0xe1
)

// stripExifSegments returns a copy of JPEG bytes with every APP1
// segment (EXIF, XMP) removed, so that re-tagging an image does not
// change its content hash. If the byte stream is not well-formed JPEG
// the input is returned unchanged.
func stripExifSegments(data []byte) []byte {
	if len(data) < 4 || data[0] != jpegMarkerPrefix || data[1] != jpegSOI {
		return data
	}

	out := make([]byte, 0, len(data))
	out = append(out, data[:2]...)

	i := 2
	for i+4 <= len(data) {
		if data[i] != jpegMarkerPrefix {
			return data
		}
		marker := data[i+1]

		// Entropy-coded data follows SOS; no segments after that point.
		if marker == jpegSOS || marker == jpegEOI {
			out = append(out, data[i:]...)
			return out
		}

		segLen := int(data[i+2])<<8 | int(data[i+3])
		if segLen < 2 || i+2+segLen > len(data) {
			return data
		}

		if marker != jpegAPP1 {
			out = append(out, data[i:i+2+segLen]...)
		}
		i += 2 + segLen
	}
	return data
}

// ContentHash computes the composite duplicate-grouping key for a file:
// the MD5 digest of the hashed bytes joined with their exact length.
// For JPEG-family files the EXIF segments are stripped first, so
// byte-identical pixels with different tags still group together.
func ContentHash(data []byte, jpegFamily bool) string {
	hashed := data
	if jpegFamily {
		hashed = stripExifSegments(data)
	}
	sum := md5.Sum(hashed)
	return fmt.Sprintf("%x-%d", sum, len(hashed))
}
