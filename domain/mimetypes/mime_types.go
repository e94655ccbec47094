// Package mimetypes lists the picture formats accepted for profile uploads.
package mimetypes

import (
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"
	ImageHEIC MIME = "image/heic"
)

var pictures = []MIME{ImagePNG, ImageJPEG, ImageGIF, ImageWebP, ImageHEIC}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// DetectPicture sniffs the content and reports whether it is an accepted picture.
func DetectPicture(content []byte) (MIME, bool) {
	detected := mimetype.Detect(content).String()
	for _, candidate := range pictures {
		if mt, ok := Matches(detected, candidate); ok {
			return mt, true
		}
	}
	return Unknown, false
}
