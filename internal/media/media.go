// Package media validates uploaded course thumbnails by their bytes rather
// than by the client's declared content type.
package media

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type ImageType string

const (
	TypeJPEG ImageType = "jpeg"
	TypePNG  ImageType = "png"
	TypeGIF  ImageType = "gif"
	TypeWEBP ImageType = "webp"
	TypeAVIF ImageType = "avif"
)

var (
	ErrUnknownType  = errors.New("unsupported image type")
	ErrTypeMismatch = errors.New("declared content type does not match file contents")
	ErrEmpty        = errors.New("empty file")
)

// allowed lists the raster formats accepted as thumbnails. SVG is left out:
// thumbnails are served from a public bucket and SVG can carry script.
var allowed = map[string]ImageType{
	"image/jpeg": TypeJPEG,
	"image/png":  TypePNG,
	"image/gif":  TypeGIF,
	"image/webp": TypeWEBP,
	"image/avif": TypeAVIF,
}

type Image struct {
	Type ImageType
	MIME string
	Data []byte
}

// Ext is the file extension used for object keys.
func (i Image) Ext() string {
	if i.Type == TypeJPEG {
		return "jpg"
	}
	return string(i.Type)
}

// Prepare sniffs data and cross-checks it against the declared content type,
// which is ignored when empty or generic.
func Prepare(data []byte, declared string) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}

	imageType, mimeType, err := Detect(data)
	if err != nil {
		return Image{}, err
	}

	if want := normalizeMIME(declared); want != "" && want != "application/octet-stream" && want != mimeType {
		return Image{}, fmt.Errorf("%w: declared %s, actual %s", ErrTypeMismatch, want, mimeType)
	}

	return Image{Type: imageType, MIME: mimeType, Data: data}, nil
}

// Detect identifies data by its magic numbers and rejects anything outside the allow-list.
func Detect(data []byte) (ImageType, string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		mediaType := normalizeMIME(m.String())
		if imageType, ok := allowed[mediaType]; ok {
			return imageType, mediaType, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnknownType, detected.String())
}

func normalizeMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
