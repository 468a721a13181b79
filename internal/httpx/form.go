package httpx

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/freshkart/freshkart-api/internal/catalog"
)

const maxUploadBytes = 16 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// formImage reads one uploaded file from a multipart form; a missing file is
// not an error.
func formImage(r *http.Request, field string) (*catalog.ImageUpload, error) {
	file, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readImage(file, hdr)
}

// formImages reads every file uploaded under the given field.
func formImages(r *http.Request, field string) ([]*catalog.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	images := make([]*catalog.ImageUpload, 0, len(headers))
	for _, hdr := range headers {
		file, err := hdr.Open()
		if err != nil {
			return nil, err
		}
		img, err := readImage(file, hdr)
		file.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readImage(file multipart.File, hdr *multipart.FileHeader) (*catalog.ImageUpload, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, err
	}
	return &catalog.ImageUpload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formIntPtr parses an optional integer form value; empty means unset.
func formIntPtr(r *http.Request, field string) (*int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
