package icon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/bmp"
)

const (
	icoHeaderSize   = 6
	icoDirEntrySize = 16
	bmpFileHeader   = 14
	bmpInfoHeader   = 40
	// icoMaxSide is the largest edge an ICO entry can describe.
	icoMaxSide = 256
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

type icoEntry struct {
	width    int
	height   int
	bitCount int
	size     int
	offset   int
}

func isICO(data []byte) bool {
	return len(data) >= icoHeaderSize &&
		binary.LittleEndian.Uint16(data[0:2]) == 0 &&
		binary.LittleEndian.Uint16(data[2:4]) == 1 &&
		binary.LittleEndian.Uint16(data[4:6]) > 0
}

func decodeICO(data []byte) (image.Image, error) {
	entries, err := readICODirectory(data)
	if err != nil {
		return nil, err
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.width*e.height > best.width*best.height ||
			(e.width*e.height == best.width*best.height && e.bitCount > best.bitCount) {
			best = e
		}
	}
	payload := data[best.offset : best.offset+best.size]
	if bytes.HasPrefix(payload, pngMagic) {
		cfg, err := png.DecodeConfig(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
		return png.Decode(bytes.NewReader(payload))
	}
	return decodeDIB(payload)
}

func readICODirectory(data []byte) ([]icoEntry, error) {
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if len(data) < icoHeaderSize+count*icoDirEntrySize {
		return nil, errors.New("ico: truncated directory")
	}
	entries := make([]icoEntry, 0, count)
	for i := 0; i < count; i++ {
		raw := data[icoHeaderSize+i*icoDirEntrySize:]
		e := icoEntry{
			width:    int(raw[0]),
			height:   int(raw[1]),
			bitCount: int(binary.LittleEndian.Uint16(raw[6:8])),
			size:     int(binary.LittleEndian.Uint32(raw[8:12])),
			offset:   int(binary.LittleEndian.Uint32(raw[12:16])),
		}
		// Zero in the directory means 256 pixels.
		if e.width == 0 {
			e.width = 256
		}
		if e.height == 0 {
			e.height = 256
		}
		end := int64(e.offset) + int64(e.size)
		if e.size <= 0 || e.offset < icoHeaderSize || end > int64(len(data)) {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, errors.New("ico: no readable images")
	}
	return entries, nil
}

// decodeDIB wraps a headerless ICO bitmap in a BMP file header. ICO bitmaps
// store a doubled height covering the AND mask, which is dropped.
func decodeDIB(payload []byte) (image.Image, error) {
	if len(payload) < bmpInfoHeader {
		return nil, errors.New("ico: bitmap header too short")
	}
	headerSize := int64(binary.LittleEndian.Uint32(payload[0:4]))
	if headerSize < bmpInfoHeader || headerSize > int64(len(payload)) {
		return nil, fmt.Errorf("ico: unsupported bitmap header size %d", headerSize)
	}
	width := int64(int32(binary.LittleEndian.Uint32(payload[4:8])))
	height := int64(int32(binary.LittleEndian.Uint32(payload[8:12])))
	bitCount := int64(binary.LittleEndian.Uint16(payload[14:16]))
	colorsUsed := int64(binary.LittleEndian.Uint32(payload[32:36]))

	rows := height / 2
	if rows < 0 {
		rows = -rows
	}
	if width <= 0 || width > icoMaxSide || rows <= 0 || rows > icoMaxSide {
		return nil, fmt.Errorf("ico: invalid bitmap dimensions %dx%d", width, height)
	}
	switch bitCount {
	case 1, 4, 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("ico: unsupported bit count %d", bitCount)
	}

	var paletteEntries int64
	if bitCount <= 8 {
		paletteEntries = colorsUsed
		if paletteEntries == 0 || paletteEntries > 1<<bitCount {
			paletteEntries = 1 << bitCount
		}
	}

	// Only the XOR bitmap is handed to the decoder.
	rowSize := ((width*bitCount + 31) / 32) * 4
	pixelOffset := headerSize + paletteEntries*4
	pixelBytes := rowSize * rows
	pixelsEnd := pixelOffset + pixelBytes
	if pixelsEnd > int64(len(payload)) {
		return nil, errors.New("ico: truncated bitmap")
	}

	dib := make([]byte, pixelsEnd)
	copy(dib, payload)
	binary.LittleEndian.PutUint32(dib[8:12], uint32(int32(height/2)))
	binary.LittleEndian.PutUint32(dib[20:24], uint32(pixelBytes))

	file := make([]byte, bmpFileHeader, bmpFileHeader+len(dib))
	file[0], file[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(file[2:6], uint32(bmpFileHeader+len(dib)))
	binary.LittleEndian.PutUint32(file[10:14], uint32(bmpFileHeader+pixelOffset))
	file = append(file, dib...)

	return bmp.Decode(bytes.NewReader(file))
}
