package upload

// MaxFileSize is the largest image payload accepted, in bytes.
const MaxFileSize = 2 * 1024 * 1024 // 2MB

// acceptedImageTypes is the MIME allow-list for uploaded images.
var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ValidationError carries every rule violation found in an upload.
// Error() surfaces only the first one; callers relying on the message
// therefore always see a single actionable reason.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return "invalid upload"
	}
	return e.Reasons[0]
}

// Validate checks a decoded upload against the post schema and returns
// the typed payload. Each field is checked independently; the image
// itself must have a filename, an accepted content type, and a payload
// no larger than maxFileSize (MaxFileSize when maxFileSize <= 0).
func Validate(raw *RawUpload, maxFileSize int64) (*ValidatedUpload, error) {
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}

	var reasons []string
	if raw.Field("caption") == "" {
		reasons = append(reasons, "Caption cannot be empty")
	}
	if raw.Field("tags") == "" {
		reasons = append(reasons, "Tags cannot be empty")
	}
	if raw.Field("location") == "" {
		reasons = append(reasons, "Location cannot be empty")
	}
	if raw.File == nil {
		reasons = append(reasons, "An image file is required")
	} else {
		reasons = append(reasons, imageReasons(raw.File, maxFileSize)...)
	}
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	return &ValidatedUpload{
		Caption:  raw.Field("caption"),
		Tags:     raw.Field("tags"),
		Location: raw.Field("location"),
		File:     *raw.File,
	}, nil
}

// ValidateImage checks only the binary constraints: filename present,
// content type in the allow-list, payload within the size cap. Used on
// its own by the bare upload endpoint and by Validate for posts.
func ValidateImage(file *FilePart, maxFileSize int64) error {
	if maxFileSize <= 0 {
		maxFileSize = MaxFileSize
	}
	if reasons := imageReasons(file, maxFileSize); len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

func imageReasons(file *FilePart, maxFileSize int64) []string {
	var reasons []string
	if file.Filename == "" {
		reasons = append(reasons, "Filename is required")
	}
	if !acceptedImageTypes[file.ContentType] {
		reasons = append(reasons, "Only JPEG, PNG, or GIF images are allowed")
	}
	if int64(len(file.Data)) > maxFileSize {
		reasons = append(reasons, "Image must be 2MB or smaller")
	}
	return reasons
}
