package icon

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/jackmordaunt/icns/v3"
	"github.com/nfnt/resize"
	ico "github.com/sergeymakinen/go-ico"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/webcask/webcask/internal/platform"
)

// Format is the detected container/raster format of raw icon bytes.
type Format string

const (
	FormatPNG     Format = "png"
	FormatICO     Format = "ico"
	FormatICNS    Format = "icns"
	FormatRaster  Format = "raster" // jpeg, gif, webp, bmp: decodable, needs re-encode
	FormatUnknown Format = "unknown"
)

// DetectFormat sniffs the magic bytes of an icon payload.
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return FormatPNG
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x00, 0x00, 0x01, 0x00}):
		return FormatICO
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("icns")):
		return FormatICNS
	default:
		if _, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return FormatRaster
		}
		return FormatUnknown
	}
}

// matchesPlatform reports whether data is already in the exact format the
// target requires, so it can be used directly without conversion.
func matchesPlatform(data []byte, d platform.Descriptor) bool {
	f := DetectFormat(data)
	switch d.IconFormat {
	case "icns":
		return f == FormatICNS
	case "ico":
		return f == FormatICO
	default:
		return f == FormatPNG
	}
}

// decodeIcon turns any supported payload into a raster image. Container
// formats decode to their largest frame.
func decodeIcon(data []byte) (image.Image, error) {
	switch DetectFormat(data) {
	case FormatICNS:
		img, err := icns.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode icns: %w", err)
		}
		return img, nil
	case FormatICO:
		img, err := ico.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode ico: %w", err)
		}
		return img, nil
	case FormatUnknown:
		return nil, fmt.Errorf("unrecognized image format")
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return img, nil
	}
}

// icoSizes is the multi-resolution set packed into Windows icons.
var icoSizes = []uint{16, 24, 32, 48, 64, 128, 256}

// Convert writes data to destPath in the format the target platform
// requires. Payloads already in the right format are written verbatim.
func Convert(data []byte, d platform.Descriptor, destPath string) error {
	if matchesPlatform(data, d) {
		return os.WriteFile(destPath, data, 0o644)
	}

	img, err := decodeIcon(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch d.IconFormat {
	case "icns":
		if err := icns.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode icns: %w", err)
		}
	case "ico":
		frames := make([]image.Image, 0, len(icoSizes))
		for _, size := range icoSizes {
			frames = append(frames, squareFrame(img, size))
		}
		if err := ico.EncodeAll(&buf, frames); err != nil {
			return fmt.Errorf("encode ico: %w", err)
		}
	default:
		if err := png.Encode(&buf, normalizeSize(img)); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	}

	return os.WriteFile(destPath, buf.Bytes(), 0o644)
}

// squareFrame resizes img to size x size using Lanczos resampling.
func squareFrame(img image.Image, size uint) image.Image {
	b := img.Bounds()
	if uint(b.Dx()) == size && uint(b.Dy()) == size {
		return img
	}
	return resize.Resize(size, size, img, resize.Lanczos3)
}

// linuxIconSize is the single raster size shipped for linux bundles.
const linuxIconSize = 512

// normalizeSize caps oversized or non-square rasters at the standard size.
func normalizeSize(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == b.Dy() && b.Dx() <= linuxIconSize {
		return img
	}
	return resize.Resize(linuxIconSize, linuxIconSize, img, resize.Lanczos3)
}
