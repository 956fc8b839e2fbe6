package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrMalformedBody signals a request body that is absent, empty, or not
// decodable as multipart form data.
var ErrMalformedBody = errors.New("no form data provided")

// MissingFieldsError reports every required text field the body failed
// to supply, so the caller gets one actionable message instead of a
// generic failure.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Decode reads the request body as multipart form data and returns the
// text fields plus the binary attachment, if any.
//
// Parts are classified by their declared content type: a part carrying a
// Content-Type header is the binary attachment, anything else is a named
// text field. When several binary parts are present the first one in
// body order wins and the rest are discarded.
//
// Any fields listed in required that are absent from the body are
// reported together via MissingFieldsError.
func Decode(r *http.Request, required ...string) (*RawUpload, error) {
	if r.Body == nil {
		return nil, ErrMalformedBody
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrMalformedBody
	}

	raw := &RawUpload{Fields: make(map[string]string)}
	seen := 0
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrMalformedBody
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, ErrMalformedBody
		}
		seen++

		if ct := part.Header.Get("Content-Type"); ct != "" {
			// First binary part wins; later ones are ignored.
			if raw.File == nil {
				raw.File = &FilePart{
					Filename:    part.FileName(),
					ContentType: ct,
					Data:        data,
				}
			}
			continue
		}
		if name := part.FormName(); name != "" {
			raw.Fields[name] = string(data)
		}
	}
	if seen == 0 {
		return nil, ErrMalformedBody
	}

	var missing []string
	for _, name := range required {
		if _, ok := raw.Fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	return raw, nil
}
