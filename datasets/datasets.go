// Package datasets provides an image batch generator for classification
// training pipelines.
//
// A Generator walks a directory of image files and produces batches of
// normalized pixel data, paired with one-hot (or summed multi-hot) label
// vectors when running in train mode. Labels are resolved once, at
// construction, by a caller provided LabelResolver, and each image can be
// transformed by an optional AugmentFunc before normalization.
//
// The generator is pull-based and never ends on its own: every call to
// Generator.Next does the directory listing, file I/O and decoding it needs
// synchronously, and once a pass over the directory is exhausted the next
// pass starts. The last batch of a pass holds whatever is left in the buffer,
// so it may be smaller than the batch size, or even empty.
//
// Generator also implements gomlx's train.Dataset, so it can feed a
// train.Loop directly:
//
//	gen, err := datasets.New(datasets.Config{
//		Dir:     "assets/train/",
//		Size:    datasets.Size{Width: 64, Height: 64},
//		Labels:  readTags,
//		RefPath: "assets/train.csv",
//	})
//	...
//	batch, err := gen.Next()
package datasets

import (
	"image"

	"github.com/gomlx/gomlx/pkg/ml/train"
)

// LabelResolver returns, for the given reference path, a mapping from file
// basename (no directory, no extension) to the labels of that file, and the
// list of all label names.
//
// It is called exactly once, when the Generator is created.
type LabelResolver func(refPath string) (mapping map[string][]string, labels []string, err error)

// AugmentFunc transforms one decoded image. It is called once per image per
// pass and may be randomized.
type AugmentFunc func(img image.Image) image.Image

// Mode selects whether the Generator yields labels.
type Mode string

const (
	// ModeTrain yields images and label vectors. It requires a LabelResolver.
	ModeTrain Mode = "train"

	// ModeTest yields images only.
	ModeTest Mode = "test"
)

// Size is a target image size, in pixels.
type Size struct {
	Width, Height int
}

var (
	assertGeneratorIsTrainDataset *Generator
	_                             train.Dataset = assertGeneratorIsTrainDataset
)
