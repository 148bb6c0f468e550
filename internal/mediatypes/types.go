package mediatypes

// FileType represents the category of a candidate file.
type FileType string

const (
	// FileTypeImage represents a directly decodable image file.
	FileTypeImage FileType = "image"
	// FileTypeRaw represents a camera RAW file (metadata and embedded
	// preview only; no direct pixel decode).
	FileTypeRaw FileType = "raw"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are decodable image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// RawExtensions maps file extensions to whether they are recognized camera
// RAW formats.
var RawExtensions = map[string]bool{
	".cr2": true, // Canon
	".cr3": true, // Canon
	".nef": true, // Nikon
	".arw": true, // Sony
	".sr2": true, // Sony
	".dng": true, // Adobe
	".orf": true, // Olympus
	".rw2": true, // Panasonic
	".pef": true, // Pentax
	".raf": true, // Fuji
	".3fr": true, // Hasselblad
	".fff": true, // Imacon
	".mos": true, // Leaf
	".iiq": true, // Phase One
	".mef": true, // Mamiya
	".mrw": true, // Minolta
	".x3f": true, // Sigma
}

// JpegExtensions maps file extensions to whether the file is JPEG-family
// (relevant for EXIF-stripped content hashing).
var JpegExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// MimeTypes maps file extensions to their MIME types for serving originals.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if RawExtensions[ext] {
		return FileTypeRaw
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension, or
// "application/octet-stream" if unknown.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
