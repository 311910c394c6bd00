package datasets

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch is a stack of normalized images, stored in flat contiguous buffers,
// and, in train mode, their label vectors.
type Batch struct {
	// Images holds Len() images shaped [Height, Width, 3], values in [0, 1].
	Images []float32

	// Labels holds Len() label vectors of length LabelDim. It is nil in test mode.
	Labels []float32

	// Names are the basenames of the images, in batch order.
	Names []string

	Size     Size
	LabelDim int
}

func newBatch(size Size, labelDim, capacity int, withLabels bool) *Batch {
	b := &Batch{
		Images:   make([]float32, 0, capacity*size.Width*size.Height*NumChannels),
		Names:    make([]string, 0, capacity),
		Size:     size,
		LabelDim: labelDim,
	}
	if withLabels {
		b.Labels = make([]float32, 0, capacity*labelDim)
	}
	return b
}

// Len returns the number of images in the batch.
func (b *Batch) Len() int { return len(b.Names) }

// HasLabels reports whether the batch was produced in train mode.
func (b *Batch) HasLabels() bool { return b.Labels != nil }

// ImageDim is the number of values of one image.
func (b *Batch) ImageDim() int { return b.Size.Width * b.Size.Height * NumChannels }

// Image returns the flat [Height, Width, 3] pixel values of the i-th image.
func (b *Batch) Image(i int) []float32 {
	dim := b.ImageDim()
	return b.Images[i*dim : (i+1)*dim]
}

// Label returns the label vector of the i-th image, or nil in test mode.
func (b *Batch) Label(i int) []float32 {
	if !b.HasLabels() {
		return nil
	}
	return b.Labels[i*b.LabelDim : (i+1)*b.LabelDim]
}

// ImageDimensions returns the shape of the stacked images: [n, height, width, 3].
func (b *Batch) ImageDimensions() []int {
	return []int{b.Len(), b.Size.Height, b.Size.Width, NumChannels}
}

// Tensors converts the batch to gomlx tensors: images shaped
// [n, height, width, 3] and labels shaped [n, labelDim]. labels is nil for
// batches without labels.
func (b *Batch) Tensors() (images, labels *tensors.Tensor) {
	images = tensors.FromFlatDataAndDimensions(b.Images, b.ImageDimensions()...)
	if b.HasLabels() {
		labels = tensors.FromFlatDataAndDimensions(b.Labels, b.Len(), b.LabelDim)
	}
	return
}
