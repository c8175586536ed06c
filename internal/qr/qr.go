// Package qr renders QR codes as PNG images.
package qr

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 128
	MaxSize     = 1024
)

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qr: empty content")

// ClampSize maps size into [MinSize, MaxSize]; zero or negative means DefaultSize.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// PNG encodes content at high error correction, matching printed use.
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	return qrcode.Encode(content, qrcode.High, ClampSize(size))
}
