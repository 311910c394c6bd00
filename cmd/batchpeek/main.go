// batchpeek runs the image batch generator over a directory, in test mode,
// and reports what the batches look like: number of images, shape, pixel
// range and memory.
//
// Usage:
//
//	go run ./cmd/batchpeek -dir=assets/train -width=64 -height=64 -batch=32 -batches=4
//
// Use -v=2 to also log each batch from within the generator.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/Noofbiz/imagebatch/datasets"
)

var (
	flagDir     = flag.String("dir", "", "Directory with the images.")
	flagWidth   = flag.Int("width", 64, "Target image width.")
	flagHeight  = flag.Int("height", 64, "Target image height.")
	flagBatch   = flag.Int("batch", datasets.DefaultBatchSize, "Batch size.")
	flagBatches = flag.Int("batches", 2, "Number of batches to generate.")
	flagQuiet   = flag.Bool("quiet", false, "Don't display a progress bar.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagDir == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		flag.Usage()
		os.Exit(2)
	}

	gen, err := datasets.New(datasets.Config{
		Dir:       *flagDir,
		Size:      datasets.Size{Width: *flagWidth, Height: *flagHeight},
		BatchSize: *flagBatch,
		Mode:      datasets.ModeTest,
	})
	if err != nil {
		klog.Fatalf("Failed to create generator: %+v", err)
	}
	batchSize := gen.Config().BatchSize

	var pBar *progressbar.ProgressBar
	if !*flagQuiet {
		pBar = progressbar.NewOptions(*flagBatches*batchSize,
			progressbar.OptionSetDescription("Loading"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("images"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
	}

	var reports []string
	for i := 0; i < *flagBatches; i++ {
		batch, err := gen.Next()
		if err != nil {
			klog.Errorf("Batch %d failed: %+v", i, err)
			os.Exit(1)
		}
		if pBar != nil {
			if err := pBar.Add(batch.Len()); err != nil {
				klog.Warningf("Progress bar update failed: %v", err)
			}
		}
		reports = append(reports, describe(i, gen.Passes(), batch))
	}
	if pBar != nil {
		if err := pBar.Finish(); err != nil {
			klog.Warningf("Progress bar finish failed: %v", err)
		}
		fmt.Println()
	}
	for _, report := range reports {
		fmt.Println(report)
	}
}

// describe summarizes one batch in one line.
func describe(idx, passes int, batch *datasets.Batch) string {
	if batch.Len() == 0 {
		return fmt.Sprintf("batch #%d (pass %d): empty, end of pass", idx, passes)
	}
	minValue, maxValue := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range batch.Images {
		minValue = min(minValue, v)
		maxValue = max(maxValue, v)
	}
	memory := uint64(len(batch.Images)) * 4
	return fmt.Sprintf("batch #%d (pass %d): %d images, shape %v, pixels in [%.3f, %.3f], %s",
		idx, passes, batch.Len(), batch.ImageDimensions(), minValue, maxValue, humanize.Bytes(memory))
}
