// Package sniffer identifies uploaded raster images by their leading bytes.
package sniffer

import (
	"bytes"
	"errors"
	"mime"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeAVIF MediaType = "avif"
)

// HeadSize is how many leading bytes Detect looks at.
const HeadSize = 512

var ErrUnknownType = errors.New("unsupported image type")

type Result struct {
	Type MediaType
	MIME string
}

// Extension is the file suffix used in object keys.
func (r Result) Extension() string {
	if r.Type == TypeJPEG {
		return "jpg"
	}
	return string(r.Type)
}

type signature struct {
	result Result
	match  func(head []byte) bool
}

var signatures = []signature{
	{Result{TypeJPEG, "image/jpeg"}, prefix(0xff, 0xd8, 0xff)},
	{Result{TypePNG, "image/png"}, prefix(0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n')},
	{Result{TypeGIF, "image/gif"}, func(h []byte) bool {
		return bytes.HasPrefix(h, []byte("GIF87a")) || bytes.HasPrefix(h, []byte("GIF89a"))
	}},
	{Result{TypeWEBP, "image/webp"}, func(h []byte) bool {
		return len(h) >= 12 && bytes.HasPrefix(h, []byte("RIFF")) && string(h[8:12]) == "WEBP"
	}},
	{Result{TypeAVIF, "image/avif"}, isAVIF},
}

func prefix(magic ...byte) func([]byte) bool {
	return func(h []byte) bool { return bytes.HasPrefix(h, magic) }
}

// isAVIF checks the ISO BMFF ftyp box: size, "ftyp", then major and
// compatible brands within the box.
func isAVIF(h []byte) bool {
	if len(h) < 12 || string(h[4:8]) != "ftyp" {
		return false
	}
	size := int(h[0])<<24 | int(h[1])<<16 | int(h[2])<<8 | int(h[3])
	if size < 12 || size > len(h) {
		size = len(h)
	}
	brands := h[8:size]
	return bytes.Contains(brands, []byte("avif")) || bytes.Contains(brands, []byte("avis"))
}

// Detect inspects the first HeadSize bytes of data.
func Detect(data []byte) (Result, error) {
	if len(data) > HeadSize {
		data = data[:HeadSize]
	}
	for _, sig := range signatures {
		if sig.match(data) {
			return sig.result, nil
		}
	}
	return Result{}, ErrUnknownType
}

// NormalizeMIME strips parameters and case from a Content-Type value.
// Unparseable values come back empty.
func NormalizeMIME(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}
