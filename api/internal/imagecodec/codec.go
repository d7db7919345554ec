// Package imagecodec normalizes inbound images to PNG and base64 for the inference engines.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when an upload does not declare an image/* content type.
var ErrNotImage = errors.New("file must be an image")

// CheckContentType accepts only declared image media types.
func CheckContentType(ct string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/") {
		return ErrNotImage
	}
	return nil
}

// DecodeBase64 decodes std or URL-safe base64. A data:URI prefix is stripped.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		// data:<mime>;base64,<payload>
		if idx := strings.IndexByte(s, ','); idx > 0 {
			s = s[idx+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return b, nil
	}
	if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, nil
	}
	return nil, fmt.Errorf("decode base64: %w", err)
}

// Image is a decoded upload re-encoded as PNG.
type Image struct {
	PNG    []byte
	Format string // source format as reported by image.Decode
	Width  int
	Height int
}

// Base64 returns the PNG bytes in std base64.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.PNG)
}

// ToPNG decodes raw bytes in any registered format and re-encodes them as PNG.
// No resizing or recompression beyond the PNG encoder defaults.
func ToPNG(raw []byte) (Image, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return Image{
		PNG:    buf.Bytes(),
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// ToPNGBase64 is ToPNG followed by base64 encoding.
func ToPNGBase64(raw []byte) (string, error) {
	img, err := ToPNG(raw)
	if err != nil {
		return "", err
	}
	return img.Base64(), nil
}

// FromBase64 decodes a base64 payload and normalizes it to PNG.
func FromBase64(s string) (Image, error) {
	raw, err := DecodeBase64(s)
	if err != nil {
		return Image{}, err
	}
	return ToPNG(raw)
}
