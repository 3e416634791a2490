package testsupport

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// PNG returns an encoded opaque PNG of the given size.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// ICOWithPNG returns an ICO container holding one PNG payload per size.
func ICOWithPNG(t testing.TB, sizes ...int) []byte {
	t.Helper()

	payloads := make([]icoImage, 0, len(sizes))
	for _, size := range sizes {
		payloads = append(payloads, icoImage{width: size, height: size, bitCount: 32, data: PNG(t, size, size)})
	}
	return buildICO(payloads)
}

// ICOWithBitmap returns an ICO container holding a single 32-bit DIB image.
func ICOWithBitmap(t testing.TB, size int) []byte {
	t.Helper()

	header := make([]byte, 40)
	binary.LittleEndian.PutUint32(header[0:4], 40)
	binary.LittleEndian.PutUint32(header[4:8], uint32(size))
	binary.LittleEndian.PutUint32(header[8:12], uint32(size*2))
	binary.LittleEndian.PutUint16(header[12:14], 1)
	binary.LittleEndian.PutUint16(header[14:16], 32)

	pixels := bytes.Repeat([]byte{0x40, 0x80, 0xc0, 0xff}, size*size)
	maskRow := ((size + 31) / 32) * 4
	mask := make([]byte, maskRow*size)

	data := append(append(header, pixels...), mask...)
	return buildICO([]icoImage{{width: size, height: size, bitCount: 32, data: data}})
}

// PNGWithDeclaredSize returns a small PNG whose IHDR claims width x height.
// The pixel data only covers a 1x1 image.
func PNGWithDeclaredSize(t testing.TB, width, height uint32) []byte {
	t.Helper()

	data := PNG(t, 1, 1)
	// Signature (8) + length (4) + "IHDR" (4), then width and height.
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

// ICOWithRaw returns an ICO container whose single 16x16 entry holds payload
// verbatim, for exercising malformed bitmaps.
func ICOWithRaw(payload []byte) []byte {
	return buildICO([]icoImage{{width: 16, height: 16, bitCount: 32, data: payload}})
}

// DIBHeader returns a 40-byte bitmap info header with the given fields.
func DIBHeader(width, height int32, bitCount uint16, colorsUsed uint32) []byte {
	header := make([]byte, 40)
	binary.LittleEndian.PutUint32(header[0:4], 40)
	binary.LittleEndian.PutUint32(header[4:8], uint32(width))
	binary.LittleEndian.PutUint32(header[8:12], uint32(height))
	binary.LittleEndian.PutUint16(header[12:14], 1)
	binary.LittleEndian.PutUint16(header[14:16], bitCount)
	binary.LittleEndian.PutUint32(header[32:36], colorsUsed)
	return header
}

type icoImage struct {
	width    int
	height   int
	bitCount int
	data     []byte
}

func buildICO(images []icoImage) []byte {
	var buf bytes.Buffer
	header := make([]byte, 6)
	binary.LittleEndian.PutUint16(header[2:4], 1)
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(images)))
	buf.Write(header)

	offset := 6 + 16*len(images)
	for _, img := range images {
		entry := make([]byte, 16)
		entry[0] = byte(img.width % 256)
		entry[1] = byte(img.height % 256)
		binary.LittleEndian.PutUint16(entry[4:6], 1)
		binary.LittleEndian.PutUint16(entry[6:8], uint16(img.bitCount))
		binary.LittleEndian.PutUint32(entry[8:12], uint32(len(img.data)))
		binary.LittleEndian.PutUint32(entry[12:16], uint32(offset))
		buf.Write(entry)
		offset += len(img.data)
	}
	for _, img := range images {
		buf.Write(img.data)
	}
	return buf.Bytes()
}
