package extract

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"picpurge/internal/database"
	"picpurge/internal/logging"
	"picpurge/internal/mediatypes"
)

// Result is the output of one extraction: the record to persist plus
// the generated thumbnail bytes, which the caller stores separately.
type Result struct {
	Record    database.ImageRecord
	Thumbnail []byte
}

// Extract reads one file and derives every feature the record model
// carries. The steps are individually fallible: an unreadable file is
// the only hard failure; decode and metadata problems leave the
// affected fields unset and the record survives.
func Extract(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewError(KindIO, path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(KindIO, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	fileType := mediatypes.GetFileType(ext)

	rec := database.ImageRecord{
		FilePath:    path,
		FileName:    info.Name(),
		FileSize:    int64(len(data)),
		ContentHash: ContentHash(data, mediatypes.JpegExtensions[ext]),
	}

	// Pixel decode. RAW formats have no stdlib decoder; everything a
	// RAW file yields comes from its metadata block below.
	var img image.Image
	if fileType != mediatypes.FileTypeRaw {
		decoded, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			logging.Debug("could not decode %s: %v", path, err)
		} else {
			img = decoded
			w := decoded.Bounds().Dx()
			h := decoded.Bounds().Dy()
			rec.Width = &w
			rec.Height = &h
			logging.Debug("decoded %s as %s (%dx%d)", path, format, w, h)
		}
	}

	meta := parseExif(path, data)

	// RAW files often carry a full-resolution-agnostic JPEG preview in
	// their EXIF block; use it as the pixel source when present.
	var preview image.Image
	if img == nil && meta != nil && len(meta.preview) > 0 {
		decoded, err := jpeg.Decode(bytes.NewReader(meta.preview))
		if err != nil {
			logging.Debug("could not decode embedded preview of %s: %v", path, err)
		} else {
			preview = decoded
		}
	}

	if src := pixelSource(img, preview); src != nil {
		if phash, err := goimagehash.PerceptionHash(src); err != nil {
			logging.Warn("could not compute perceptual hash for %s: %v", path, err)
		} else {
			s := phash.ToString()
			rec.PerceptualHash = &s
		}
	}

	if meta != nil {
		rec.DeviceMake = meta.deviceMake
		rec.DeviceModel = meta.deviceModel
		rec.LensModel = meta.lensModel
	}
	rec.CreatedAt = createdAt(meta, info)

	res := &Result{Record: rec}
	if src := pixelSource(img, preview); src != nil {
		thumb, err := encodeThumbnail(src)
		if err != nil {
			logging.Warn("could not generate thumbnail for %s: %v", path, err)
		} else {
			res.Thumbnail = thumb
		}
	} else if fileType == mediatypes.FileTypeRaw {
		res.Thumbnail = placeholderThumbnail()
	}

	return res, nil
}

func pixelSource(img, preview image.Image) image.Image {
	if img != nil {
		return img
	}
	return preview
}

// createdAt picks the best available creation timestamp: embedded
// capture time, then filesystem modification time, then now.
func createdAt(meta *exifMeta, info os.FileInfo) time.Time {
	if meta != nil && meta.takenAt != nil {
		return *meta.takenAt
	}
	if !info.ModTime().IsZero() {
		return info.ModTime()
	}
	return time.Now()
}
