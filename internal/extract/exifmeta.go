package extract

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"picpurge/internal/logging"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// exifMeta holds the fields pulled from a file's embedded metadata.
// Every field is optional; a parse failure surfaces as a nil field,
// never as an error.
type exifMeta struct {
	deviceMake  *string
	deviceModel *string
	lensModel   *string
	takenAt     *time.Time
	preview     []byte // embedded JPEG preview, for RAW files
}

// parseExif decodes embedded metadata from raw file bytes. Returns nil
// when the file carries no parseable EXIF block at all.
func parseExif(path string, data []byte) *exifMeta {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		logging.Debug("no EXIF data in %s: %v", path, err)
		return nil
	}

	meta := &exifMeta{
		deviceMake:  tagString(x, exif.Make),
		deviceModel: tagString(x, exif.Model),
		lensModel:   tagString(x, exif.LensModel),
	}
	if meta.lensModel == nil {
		meta.lensModel = tagString(x, exif.LensMake)
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		if raw := tagString(x, field); raw != nil {
			parsed, err := time.ParseInLocation(exifTimeLayout, *raw, time.Local)
			if err != nil {
				logging.Warn("unparseable EXIF timestamp %q in %s: %v", *raw, path, err)
				continue
			}
			meta.takenAt = &parsed
			break
		}
	}

	if thumb, err := x.JpegThumbnail(); err == nil {
		meta.preview = thumb
	}
	return meta
}

// tagString returns the trimmed string value of an EXIF tag, or nil
// when the tag is absent, non-string, or empty.
func tagString(x *exif.Exif, field exif.FieldName) *string {
	tag, err := x.Get(field)
	if err != nil {
		return nil
	}
	val, err := tag.StringVal()
	if err != nil {
		return nil
	}
	val = strings.TrimSpace(strings.Trim(val, "\x00"))
	if val == "" {
		return nil
	}
	return &val
}
