package datasets

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultBatchSize is used when Config.BatchSize is 0.
const DefaultBatchSize = 128

// Config holds the generator configuration.
type Config struct {
	// Dir is the directory holding the image files. Subdirectories are ignored.
	Dir string

	// Size is the target image size. Images are shrunk to fit, preserving
	// aspect ratio, and centered on a black canvas if they don't fill it.
	Size Size

	// BatchSize is the number of images per batch. If 0, DefaultBatchSize is used.
	BatchSize int

	// Mode is either ModeTrain or ModeTest. If empty, ModeTrain is used.
	Mode Mode

	// Labels resolves labels per basename. Required in ModeTrain, ignored in ModeTest.
	Labels LabelResolver

	// Augment is optionally applied to each image after resizing.
	Augment AugmentFunc

	// RefPath is passed to Labels. If set, it must point to an existing file.
	RefPath string

	// Name of the dataset, defaults to the base name of Dir.
	Name string
}

// Generator yields batches of images from a directory. See package
// documentation for details.
//
// It is not safe for concurrent use.
type Generator struct {
	cfg     Config
	mapping map[string][]string
	vocab   *Vocabulary

	// Current pass: files listed at its start and position of the next file.
	files  []string
	pos    int
	passes int

	// eofPending is set when Yield returned the non-empty last batch of a
	// pass: the following Yield reports io.EOF.
	eofPending bool

	buf *Batch
}

// New validates cfg and creates a Generator. In train mode the label
// resolver is called here, once.
//
// Configuration problems return an error matching ErrInvalidConfig.
func New(cfg Config) (*Generator, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeTrain
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = filepath.Base(filepath.Clean(cfg.Dir))
	}

	g := &Generator{cfg: cfg}
	if cfg.Mode == ModeTrain {
		mapping, labels, err := cfg.Labels(cfg.RefPath)
		if err != nil {
			return nil, errors.Wrapf(err, "while resolving labels from %q", cfg.RefPath)
		}
		g.mapping = make(map[string][]string, len(mapping))
		for basename, fileLabels := range mapping {
			g.mapping[basename] = append([]string(nil), fileLabels...)
		}
		g.vocab = NewVocabulary(labels)
		klog.V(1).Infof("dataset %q: %d labels, %d labeled files", cfg.Name, g.vocab.Len(), len(g.mapping))
	}
	g.resetBuffer()
	return g, nil
}

func (cfg *Config) validate() error {
	info, err := os.Stat(cfg.Dir)
	if err != nil || !info.IsDir() {
		return errors.Wrapf(ErrInvalidConfig, "directory %q not found", cfg.Dir)
	}
	if cfg.RefPath != "" {
		info, err = os.Stat(cfg.RefPath)
		if err != nil || info.IsDir() {
			return errors.Wrapf(ErrInvalidConfig, "reference file %q not found", cfg.RefPath)
		}
	}
	switch cfg.Mode {
	case ModeTrain:
		if cfg.Labels == nil {
			return errors.Wrapf(ErrInvalidConfig, "no label resolver provided for mode %q", cfg.Mode)
		}
	case ModeTest:
	default:
		return errors.Wrapf(ErrInvalidConfig, "mode %q not found, should be one of %q or %q",
			cfg.Mode, ModeTrain, ModeTest)
	}
	if cfg.Size.Width <= 0 || cfg.Size.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "image size must be positive width and height, got %dx%d",
			cfg.Size.Width, cfg.Size.Height)
	}
	if cfg.BatchSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "batch size must be positive, got %d", cfg.BatchSize)
	}
	return nil
}

// Config returns the configuration in use, with defaults filled in.
func (g *Generator) Config() Config { return g.cfg }

// Vocabulary returns the label vocabulary, or nil in test mode.
func (g *Generator) Vocabulary() *Vocabulary { return g.vocab }

// Passes returns the number of completed passes over the directory.
func (g *Generator) Passes() int { return g.passes }

func (g *Generator) labelDim() int {
	if g.vocab == nil {
		return 0
	}
	return g.vocab.Len()
}

func (g *Generator) resetBuffer() {
	g.buf = newBatch(g.cfg.Size, g.labelDim(), g.cfg.BatchSize, g.cfg.Mode == ModeTrain)
}

// listFiles starts a new pass over the directory.
func (g *Generator) listFiles() error {
	entries, err := os.ReadDir(g.cfg.Dir)
	if err != nil {
		return errors.Wrapf(err, "while listing %s", g.cfg.Dir)
	}
	g.files = g.files[:0]
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		g.files = append(g.files, filepath.Join(g.cfg.Dir, entry.Name()))
	}
	g.pos = 0
	klog.V(1).Infof("dataset %q: pass %d over %d files", g.cfg.Name, g.passes, len(g.files))
	return nil
}

// Next returns the next batch. It blocks while the images are loaded.
//
// A batch holds Config.BatchSize images, except for the last batch of each
// pass over the directory, which holds whatever is left and can be empty.
// The following call starts a new pass.
//
// On error the in-progress batch is discarded; calling Next again continues
// with the file after the one that failed.
func (g *Generator) Next() (*Batch, error) {
	if g.files == nil {
		if err := g.listFiles(); err != nil {
			return nil, err
		}
	}
	for g.pos < len(g.files) {
		path := g.files[g.pos]
		g.pos++
		if err := g.add(path); err != nil {
			g.resetBuffer()
			return nil, err
		}
		if g.buf.Len() == g.cfg.BatchSize {
			return g.emit(), nil
		}
	}

	// End of pass: yield the remainder, and list again on the next call.
	g.files = nil
	g.passes++
	return g.emit(), nil
}

func (g *Generator) emit() *Batch {
	batch := g.buf
	g.resetBuffer()
	klog.V(2).Infof("dataset %q: batch of %d images", g.cfg.Name, batch.Len())
	return batch
}

// add loads, transforms and appends one image (and its labels) to the buffer.
func (g *Generator) add(path string) error {
	basename := Basename(path)
	var fileLabels []string
	if g.cfg.Mode == ModeTrain {
		var found bool
		fileLabels, found = g.mapping[basename]
		if !found {
			return errors.Wrapf(ErrLabelNotFound, "basename %q (%s)", basename, path)
		}
	}

	img, err := LoadImage(path)
	if err != nil {
		return err
	}
	img = Thumbnail(img, g.cfg.Size)
	if g.cfg.Augment != nil {
		img = g.cfg.Augment(img)
	}
	nrgba := FitToSize(img, g.cfg.Size)

	buf := g.buf
	start := len(buf.Images)
	buf.Images = append(buf.Images, make([]float32, buf.ImageDim())...)
	PixelsInto(buf.Images[start:], nrgba)

	if buf.HasLabels() {
		start = len(buf.Labels)
		buf.Labels = append(buf.Labels, make([]float32, buf.LabelDim)...)
		if err := g.vocab.EncodeInto(buf.Labels[start:], fileLabels...); err != nil {
			return errors.WithMessagef(err, "labels of %q", basename)
		}
	}
	buf.Names = append(buf.Names, basename)
	return nil
}

// Name implements train.Dataset.
func (g *Generator) Name() string { return g.cfg.Name }

// Reset implements train.Dataset. It drops any buffered images and restarts
// from the beginning of a new pass.
func (g *Generator) Reset() {
	g.files = nil
	g.pos = 0
	g.eofPending = false
	g.resetBuffer()
}

// Yield implements train.Dataset. It returns the images as the only input
// and, in train mode, the label vectors as the only label.
//
// Each pass over the directory is an epoch for train.Loop.RunEpochs: after
// the last batch of a pass, Yield returns io.EOF (right away if that batch is
// empty). The generator itself keeps going: the following call yields from
// the next pass.
func (g *Generator) Yield() (spec any, inputs, labels []*tensors.Tensor, err error) {
	if g.eofPending {
		g.eofPending = false
		return nil, nil, nil, io.EOF
	}
	passes := g.passes
	batch, err := g.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	if batch.Len() == 0 {
		return nil, nil, nil, io.EOF
	}
	g.eofPending = g.passes > passes
	images, labelsT := batch.Tensors()
	inputs = []*tensors.Tensor{images}
	if labelsT != nil {
		labels = []*tensors.Tensor{labelsT}
	}
	return nil, inputs, labels, nil
}
