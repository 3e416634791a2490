package icon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultPlaceholderSize is the edge length of the synthetic icon.
const DefaultPlaceholderSize = 32

// MaxDimension bounds the declared width and height of a decoded image.
// Larger images are rejected before any pixel buffer is allocated.
const MaxDimension = 1024

// Formats reported by Decode.
const (
	FormatICO  = "ico"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatJPEG = "jpeg"
	FormatBMP  = "bmp"
	FormatWebP = "webp"
)

var (
	// ErrEmpty is returned for zero-length input.
	ErrEmpty = errors.New("icon data is empty")
	// ErrUndecodable is returned when no registered decoder accepts the data.
	ErrUndecodable = errors.New("icon data is not a raster image")
)

// placeholderColor is flat gray at half opacity.
var placeholderColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}

// Icon is validated image data ready to store or write to disk.
type Icon struct {
	Data        []byte
	Format      string
	Width       int
	Height      int
	Placeholder bool
}

// Extension returns the file extension, including the dot, matching Format.
func (i Icon) Extension() string {
	switch i.Format {
	case FormatJPEG:
		return ".jpg"
	case "":
		return ".img"
	default:
		return "." + i.Format
	}
}

func (i Icon) String() string {
	if i.Placeholder {
		return fmt.Sprintf("placeholder %dx%d", i.Width, i.Height)
	}
	return fmt.Sprintf("%s %dx%d", i.Format, i.Width, i.Height)
}

// Decode validates data as a raster image and returns it with its format and
// dimensions. The original bytes are kept untouched.
func Decode(data []byte) (ic Icon, err error) {
	if len(data) == 0 {
		return Icon{}, ErrEmpty
	}
	defer func() {
		if r := recover(); r != nil {
			ic, err = Icon{}, fmt.Errorf("%w: decoder panic: %v", ErrUndecodable, r)
		}
	}()
	if isICO(data) {
		img, err := decodeICO(data)
		if err != nil {
			return Icon{}, fmt.Errorf("%w: %w", ErrUndecodable, err)
		}
		b := img.Bounds()
		return Icon{Data: data, Format: FormatICO, Width: b.Dx(), Height: b.Dy()}, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Icon{}, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return Icon{}, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Icon{}, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return Icon{}, fmt.Errorf("%w: zero-sized image", ErrUndecodable)
	}
	return Icon{Data: data, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed %d px", width, height, MaxDimension)
	}
	return nil
}

// Placeholder returns a PNG-encoded flat gray semi-transparent square. Sizes
// below one fall back to DefaultPlaceholderSize.
func Placeholder(size int) Icon {
	if size < 1 {
		size = DefaultPlaceholderSize
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderColor), image.Point{}, draw.Src)

	var buf bytes.Buffer
	// Encoding an in-memory NRGBA into a bytes.Buffer cannot fail.
	_ = png.Encode(&buf, img)
	return Icon{Data: buf.Bytes(), Format: FormatPNG, Width: size, Height: size, Placeholder: true}
}
