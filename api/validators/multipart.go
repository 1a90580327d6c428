package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
)

// ReadMultipartFile returns the bytes and filename of one multipart field.
// Files larger than maxBytes are rejected with PAYLOAD_TOO_LARGE.
func ReadMultipartFile(r *http.Request, field string, maxBytes int64) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	// Headroom for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+(1<<20))
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("%s exceeds the upload limit", field)).
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file is required", field))
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read multipart file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read multipart file")
	}
	if int64(len(data)) > maxBytes {
		return nil, "", pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("%s exceeds the upload limit", field)).
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}
	return data, header.Filename, nil
}
