// Package upload implements the multipart decoding and validation steps
// of the post ingestion flow. Both steps are pure: decoding only maps a
// request body into fields, validation only checks the result against
// the upload rules. Neither touches storage or the database.
package upload

// FilePart is the binary attachment extracted from a multipart body.
type FilePart struct {
	Filename    string
	ContentType string // As declared by the client, e.g. "image/png"
	Data        []byte
}

// RawUpload is the decoded but not yet validated multipart body:
// named text fields plus at most one binary attachment.
type RawUpload struct {
	Fields map[string]string
	File   *FilePart // nil when the body carried no binary part
}

// Field returns the named text field, or "" when absent.
func (r *RawUpload) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// ValidatedUpload is a fully checked upload payload. An instance is only
// ever produced by Validate, so holding one implies every field passed
// its constraint.
type ValidatedUpload struct {
	Caption  string
	Tags     string // Comma-separated by convention, stored as-is
	Location string
	File     FilePart
}
