package datasets

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// NumChannels is the depth of the yielded image arrays (RGB).
const NumChannels = 3

// Basename returns the file name without directory and extension, the key
// used to look up labels. Leading dots are not taken as an extension
// separator: ".DS_Store" stays ".DS_Store".
func Basename(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext)
}

// LoadImage opens and decodes the image at path. The file is closed before
// returning.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "while decoding %s", path)
	}
	return img, nil
}

// Thumbnail shrinks img to fit within size, preserving the aspect ratio.
// Images that already fit are returned unchanged (as a copy), never enlarged.
func Thumbnail(img image.Image, size Size) *image.NRGBA {
	return imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
}

// FitToSize returns an image of exactly size: img is thumbnailed if needed
// and centered over a black canvas when its aspect ratio or size doesn't
// match.
func FitToSize(img image.Image, size Size) *image.NRGBA {
	thumb := Thumbnail(img, size)
	b := thumb.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		return thumb
	}
	canvas := imaging.New(size.Width, size.Height, color.NRGBA{A: 255})
	return imaging.PasteCenter(canvas, thumb)
}

// PixelsInto writes the RGB values of img, divided by 255, into dst in
// [height, width, 3] order. Alpha is dropped. dst must have room for
// Height*Width*3 values.
func PixelsInto(dst []float32, img *image.NRGBA) {
	b := img.Bounds()
	pos := 0
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			dst[pos] = float32(row[x]) / 255
			dst[pos+1] = float32(row[x+1]) / 255
			dst[pos+2] = float32(row[x+2]) / 255
			pos += NumChannels
		}
	}
}
