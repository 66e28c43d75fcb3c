package core

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// defaultImageMIMEType is assumed when a raw base64 submission carries no
// media type of its own.
const defaultImageMIMEType = "image/jpeg"

// ErrEmptyImage is returned when the submission contains no image data.
var ErrEmptyImage = errors.New("image payload is empty")

// DecodeImagePayload derives the MIME type and pure payload bytes from an
// image submission. Both data-URL-wrapped ("data:image/png;base64,....") and
// raw base64 submissions are supported.
func DecodeImagePayload(submission string) (mimeType string, data []byte, err error) {
	submission = strings.TrimSpace(submission)
	if submission == "" {
		return "", nil, ErrEmptyImage
	}

	mimeType = defaultImageMIMEType
	raw := submission

	if strings.HasPrefix(submission, "data:") {
		comma := strings.Index(submission, ",")
		if comma == -1 {
			return "", nil, errors.New("malformed data URL: missing comma separator")
		}
		// Header looks like "data:image/png;base64"; the media type sits
		// between the scheme and the first semicolon.
		header := submission[len("data:"):comma]
		if semi := strings.Index(header, ";"); semi > 0 {
			mimeType = header[:semi]
		} else if header != "" {
			mimeType = header
		}
		raw = submission[comma+1:]
	}

	data, err = base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyImage
	}
	return mimeType, data, nil
}
