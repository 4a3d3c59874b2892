package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/texture"
)

// CompressionLevel selects the PNG encoder effort. The zero value is the
// fast default; Optimized trades encode time for smaller files.
type CompressionLevel int

const (
	CompressionDefault CompressionLevel = iota
	CompressionOptimized
)

// SupportedExtensions lists the input formats the decoder accepts, in
// lower-case with leading dot.
var SupportedExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".tif":  {},
	".tiff": {},
	".bmp":  {},
	".tga":  {},
}

// Decode turns raw file bytes into a pixel buffer. The filename is consulted
// only for its extension: TGA carries no magic bytes, so it cannot be sniffed
// the way the registered formats are.
func Decode(filename string, data []byte) (*texture.Buffer, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(filename), ".tga") {
		img, err = tga.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(filename), err)
	}
	return fromImage(img), nil
}

// fromImage flattens any decoded image into an interleaved 8-bit buffer.
// Sources without an alpha component produce 3-channel buffers; everything
// else keeps its alpha as a fourth channel.
func fromImage(img image.Image) *texture.Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	if opaqueModel(img) {
		buf := texture.NewBuffer(w, h, 3)
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < w; x++ {
				i := (y*w + x) * 3
				buf.Pix[i] = row[x*4]
				buf.Pix[i+1] = row[x*4+1]
				buf.Pix[i+2] = row[x*4+2]
			}
		}
		return buf
	}

	buf := texture.NewBuffer(w, h, 4)
	for y := 0; y < h; y++ {
		copy(buf.Pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:])
	}
	return buf
}

func opaqueModel(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return true
	}
	return false
}

// EncodePNG serializes a buffer as PNG bytes at the requested compression
// level. Buffers must carry 3 or 4 channels; anything else is a defect the
// pipeline should have rejected earlier.
func EncodePNG(buf *texture.Buffer, level CompressionLevel) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	switch buf.Channels {
	case 4:
		copy(nrgba.Pix, buf.Pix)
	case 3:
		for i, j := 0, 0; i < len(buf.Pix); i, j = i+3, j+4 {
			nrgba.Pix[j] = buf.Pix[i]
			nrgba.Pix[j+1] = buf.Pix[i+1]
			nrgba.Pix[j+2] = buf.Pix[i+2]
			nrgba.Pix[j+3] = 255
		}
	}

	compression := png.BestSpeed
	if level == CompressionOptimized {
		compression = png.BestCompression
	}
	encoder := png.Encoder{CompressionLevel: compression}

	var out bytes.Buffer
	if err := encoder.Encode(&out, nrgba); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}
