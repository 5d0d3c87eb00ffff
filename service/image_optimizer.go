package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// Images wider than this are scaled down to exactly this width
	maxUploadWidth = 800
	// Quality used when re-encoding lossy formats
	uploadQuality = 85
)

// PreparedImage is an image ready to be uploaded
type PreparedImage struct {
	Data     []byte
	Format   string // lower-case encoded format, e.g. "jpeg"
	MimeType string
	Width    int
	Height   int
	Resized  bool
}

// PrepareImageFile reads a local image and prepares it for upload
func PrepareImageFile(path string) (*PreparedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return PrepareImage(data)
}

// PrepareImage decodes an image, scales it down to maxUploadWidth when wider
// (aspect ratio kept, Lanczos) and re-encodes it in its source format.
// Formats imaging cannot encode, like WebP, are re-encoded as JPEG.
func PrepareImage(imageData []byte) (*PreparedImage, error) {
	img, sourceFormat, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	log.Printf("📸 Image decoded: format=%s, size=%dx%d", sourceFormat, width, height)

	resized := false
	if width > maxUploadWidth {
		newHeight := scaledHeight(width, height, maxUploadWidth)
		log.Printf("🔄 Resizing image: %dx%d -> %dx%d", width, height, maxUploadWidth, newHeight)
		img = imaging.Resize(img, maxUploadWidth, newHeight, imaging.Lanczos)
		width, height = maxUploadWidth, newHeight
		resized = true
	}

	format, err := imaging.FormatFromExtension(sourceFormat)
	if err != nil {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(uploadQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image as %s: %w", format, err)
	}

	name := strings.ToLower(format.String())
	log.Printf("✓ Image prepared: format=%s, quality=%d, output_size=%d bytes", name, uploadQuality, buf.Len())
	return &PreparedImage{
		Data:     buf.Bytes(),
		Format:   name,
		MimeType: "image/" + name,
		Width:    width,
		Height:   height,
		Resized:  resized,
	}, nil
}

// scaledHeight keeps the aspect ratio for a new width, truncating toward zero
func scaledHeight(width, height, newWidth int) int {
	h := height * newWidth / width
	if h < 1 {
		h = 1
	}
	return h
}

const (
	thumbMaxDim  = 300
	thumbQuality = 60
)

// ThumbnailImage shrinks an image to fit a thumbMaxDim box and encodes it as JPEG
func ThumbnailImage(imageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > thumbMaxDim || bounds.Dy() > thumbMaxDim {
		img = imaging.Fit(img, thumbMaxDim, thumbMaxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
