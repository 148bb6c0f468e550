package database

import "time"

// ImageRecord is one row of the images table: everything extracted from a
// single file plus the flags set by the analysis passes.
//
// Nil pointer fields map to NULL columns and mean the corresponding
// extraction step failed or the data was absent, never that the value is
// empty.
type ImageRecord struct {
	ID             int64     `json:"id"`
	FilePath       string    `json:"filePath"`
	FileName       string    `json:"fileName"`
	FileSize       int64     `json:"fileSizeBytes"`
	ContentHash    string    `json:"contentHash"`
	Width          *int      `json:"width,omitempty"`
	Height         *int      `json:"height,omitempty"`
	DeviceMake     *string   `json:"deviceMake,omitempty"`
	DeviceModel    *string   `json:"deviceModel,omitempty"`
	LensModel      *string   `json:"lensModel,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	PerceptualHash *string   `json:"perceptualHash,omitempty"`
	ThumbnailRef   *string   `json:"thumbnailRef,omitempty"`
	IsDuplicate    bool      `json:"isDuplicate"`
	DuplicateOfID  *int64    `json:"duplicateOfId,omitempty"`
	SimilarGroup   []int64   `json:"similarGroup,omitempty"`
	IsRecycled     bool      `json:"isRecycled"`
}

// HasDimensions reports whether pixel decode succeeded for this record.
func (r *ImageRecord) HasDimensions() bool {
	return r.Width != nil && r.Height != nil
}

// Area returns width*height, or 0 when dimensions are unknown.
func (r *ImageRecord) Area() int {
	if !r.HasDimensions() {
		return 0
	}
	return *r.Width * *r.Height
}

// AspectRatio returns width/height, or 0 when dimensions are unknown or
// degenerate.
func (r *ImageRecord) AspectRatio() float64 {
	if !r.HasDimensions() || *r.Height == 0 {
		return 0
	}
	return float64(*r.Width) / float64(*r.Height)
}

// HashGroup is the set of live records sharing one content hash, sorted
// by ascending id. Groups always have at least two members.
type HashGroup struct {
	ContentHash string
	Records     []ImageRecord
}

// Stats summarizes the live record set for the stats endpoint and the
// end-of-run summary.
type Stats struct {
	TotalImages         int `json:"totalImages"`
	DuplicateCount      int `json:"duplicateCount"`
	DuplicateGroupCount int `json:"duplicateGroupCount"`
	SimilarGroupCount   int `json:"similarGroupCount"`
	UniqueImageCount    int `json:"uniqueImageCount"`
}
