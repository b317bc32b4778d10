package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"PulseLens/internal/ai"
)

const (
	defaultQuality = 80
	minWidth       = 320
)

// Loader читает фиксированный файл картинки на каждый запрос. Ничего не кэширует.
type Loader struct {
	path        string
	mimeType    string
	maxSizeByte int
	quality     int
}

func NewLoader(path, mimeType string, maxSizeBytes int) *Loader {
	return &Loader{
		path:        path,
		mimeType:    mimeType,
		maxSizeByte: maxSizeBytes,
		quality:     defaultQuality,
	}
}

// Load читает файл целиком. Если задан лимит и файл больше него — картинка уменьшается
// и перекодируется в JPEG.
func (l *Loader) Load() (*ai.Attachment, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	if l.maxSizeByte <= 0 || len(data) <= l.maxSizeByte {
		return &ai.Attachment{MimeType: l.mimeType, Data: data}, nil
	}

	shrunk, err := l.shrink(data)
	if err != nil {
		return nil, fmt.Errorf("shrink %s: %w", l.path, err)
	}
	return &ai.Attachment{MimeType: "image/jpeg", Data: shrunk}, nil
}

func (l *Loader) shrink(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return nil, fmt.Errorf("invalid image size: %dx%d", origWidth, origHeight)
	}

	width, height := origWidth, origHeight
	for {
		encoded, err := encodeJPEG(resizeNearest(img, width, height), l.quality)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= l.maxSizeByte {
			return encoded, nil
		}
		if width <= minWidth {
			return nil, fmt.Errorf("image exceeds max size %d bytes even after downscale", l.maxSizeByte)
		}
		width = max(1, int(float64(width)*0.9))
		height = max(1, origHeight*width/origWidth)
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		srcY := srcBounds.Min.Y + y*srcHeight/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcWidth/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	return dst
}
