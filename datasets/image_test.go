package datasets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePNG writes a width x height image filled with c to dir/name.
func writePNG(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "train_10", Basename("/data/train/train_10.jpg"))
	assert.Equal(t, "img.v2", Basename("img.v2.png"))
	assert.Equal(t, "noext", Basename("dir/noext"))
	assert.Equal(t, ".DS_Store", Basename("/data/train/.DS_Store"))
	assert.Equal(t, ".hidden", Basename(".hidden"))
	assert.Equal(t, ".thumb", Basename("dir/.thumb.jpg"))
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "red.png", 5, 3, color.NRGBA{R: 255, A: 255})
	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 3), img.Bounds().Size())

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = LoadImage(bad)
	require.Error(t, err)

	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestThumbnailPreservesAspectRatio(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	thumb := Thumbnail(src, Size{Width: 10, Height: 10})
	assert.Equal(t, image.Pt(10, 5), thumb.Bounds().Size())
}

func TestThumbnailNeverEnlarges(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 6))
	thumb := Thumbnail(src, Size{Width: 10, Height: 10})
	assert.Equal(t, image.Pt(4, 6), thumb.Bounds().Size())
}

func TestFitToSizePadsWithBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	fitted := FitToSize(src, Size{Width: 10, Height: 10})
	require.Equal(t, image.Pt(10, 10), fitted.Bounds().Size())

	// Top row is padding, middle row is image.
	assert.Equal(t, color.NRGBA{A: 255}, fitted.NRGBAAt(5, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, fitted.NRGBAAt(5, 5))
}

func TestPixelsIntoNormalizes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 255, B: 102, A: 0})
	dst := make([]float32, 2*NumChannels)
	PixelsInto(dst, img)
	assert.InDeltaSlice(t, []float32{1, 0, 0.2, 0, 1, 0.4}, dst, 1e-6)
}
