// Package codec turns fabric codes into scannable QR images and back.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of generated QR images
const DefaultSize = 300

// Encode renders code as a PNG QR image using high error correction
func Encode(code string, size int) ([]byte, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("cannot encode an empty code")
	}
	if size <= 0 {
		size = DefaultSize
	}

	png, err := qrcode.Encode(code, qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR for %q: %w", code, err)
	}
	return png, nil
}

// Decode reads the code from a scanned image.
// ok is false when the image decodes but holds no readable QR code.
func Decode(imageData []byte) (code string, ok bool, err error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", false, fmt.Errorf("failed to decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false, fmt.Errorf("failed to prepare image for scanning: %w", err)
	}

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", false, nil
	}
	return result.GetText(), true, nil
}
