package sniffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRasterFormats(t *testing.T) {
	cases := map[MediaType][]byte{
		TypeJPEG: {0xff, 0xd8, 0xff, 0xe0, 0x00},
		TypePNG:  {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00},
		TypeGIF:  []byte("GIF89a......"),
		TypeWEBP: []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
		TypeAVIF: []byte("\x00\x00\x00\x14ftypavif\x00\x00\x00\x00mif1"),
	}
	for want, head := range cases {
		res, err := Detect(head)
		require.NoError(t, err, want)
		assert.Equal(t, want, res.Type)
	}
}

func TestDetectOnlyLooksAtHead(t *testing.T) {
	data := append(bytes.Repeat([]byte("x"), HeadSize), []byte("GIF89a")...)
	_, err := Detect(data)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDetectRejectsSVGTextAndOtherISOBMFF(t *testing.T) {
	for _, head := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		"hello",
		"",
		"\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2", // mp4
	} {
		_, err := Detect([]byte(head))
		assert.ErrorIs(t, err, ErrUnknownType, head)
	}
}

func TestExtensionAndNormalizeMIME(t *testing.T) {
	assert.Equal(t, "jpg", Result{Type: TypeJPEG}.Extension())
	assert.Equal(t, "webp", Result{Type: TypeWEBP}.Extension())

	assert.Equal(t, "image/png", NormalizeMIME("Image/PNG; charset=binary"))
	assert.Equal(t, "", NormalizeMIME(""))
	assert.Equal(t, "", NormalizeMIME(";;"))
}
