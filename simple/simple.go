package simple

import (
	"math"
	"math/rand"
	"time"

	"github.com/Noofbiz/imagebatch/datasets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Config holds configurable hyperparameters for the classifier and training.
type Config struct {
	// InputDim is the number of values of one image (width*height*3). Required.
	InputDim int

	// NumClasses is the label vector length (the vocabulary size). Required.
	NumClasses int

	// LearningRate used by SGD. Default: 0.01.
	LearningRate float64

	// Epochs to train for. Default: 10.
	Epochs int

	// StepsPerEpoch is the number of non-empty batches per epoch. Default: 1.
	StepsPerEpoch int

	// Seed controls RNG for weight init. If zero, time-based seed is used.
	Seed int64
}

// BatchSource yields labeled batches. *datasets.Generator implements it.
type BatchSource interface {
	Next() (*datasets.Batch, error)
}

// Recorder receives the metrics at the end of each epoch.
// *history.History implements it.
type Recorder interface {
	OnEpochEnd(epoch int, logs map[string]float64)
}

// Model is a softmax-regression classifier over flattened images, trained
// with plain SGD on the cross-entropy loss. It is meant as a quick baseline
// that runs without any accelerator.
type Model struct {
	// Config used for training / initialization.
	Config Config

	// weights is shaped [NumClasses][InputDim].
	weights [][]float32
	biases  []float32

	rng *rand.Rand
}

// NewModel creates a new Model with small random weights.
func NewModel(cfg Config) (*Model, error) {
	if cfg.InputDim <= 0 {
		return nil, errors.Errorf("input dimension must be positive, got %d", cfg.InputDim)
	}
	if cfg.NumClasses < 2 {
		return nil, errors.Errorf("at least 2 classes required, got %d", cfg.NumClasses)
	}
	if cfg.Epochs < 0 || cfg.StepsPerEpoch < 0 {
		return nil, errors.Errorf("epochs and steps per epoch can't be negative, got %d and %d",
			cfg.Epochs, cfg.StepsPerEpoch)
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = 0.01
	}
	if cfg.Epochs == 0 {
		cfg.Epochs = 10
	}
	if cfg.StepsPerEpoch == 0 {
		cfg.StepsPerEpoch = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := &Model{
		Config:  cfg,
		weights: make([][]float32, cfg.NumClasses),
		biases:  make([]float32, cfg.NumClasses),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	// Xavier/Glorot uniform initialization heuristic
	limit := float32(math.Sqrt(6.0 / float64(cfg.InputDim+cfg.NumClasses)))
	for c := range m.weights {
		row := make([]float32, cfg.InputDim)
		for i := range row {
			row[i] = (m.rng.Float32()*2 - 1) * limit
		}
		m.weights[c] = row
	}
	return m, nil
}

// probabilities returns the softmax over the class scores of one input.
func (m *Model) probabilities(input []float32) []float64 {
	probs := make([]float64, len(m.weights))
	maxScore := math.Inf(-1)
	for c, row := range m.weights {
		score := float64(m.biases[c])
		for i, w := range row {
			score += float64(w * input[i])
		}
		probs[c] = score
		maxScore = math.Max(maxScore, score)
	}
	var sum float64
	for c := range probs {
		probs[c] = math.Exp(probs[c] - maxScore)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

func (m *Model) checkBatch(batch *datasets.Batch, needLabels bool) error {
	if batch.ImageDim() != m.Config.InputDim {
		return errors.Errorf("batch images have %d values, model expects %d", batch.ImageDim(), m.Config.InputDim)
	}
	if needLabels {
		if !batch.HasLabels() {
			return errors.New("batch has no labels, was it generated in test mode?")
		}
		if batch.LabelDim != m.Config.NumClasses {
			return errors.Errorf("batch labels have %d classes, model expects %d", batch.LabelDim, m.Config.NumClasses)
		}
	}
	return nil
}

// Predict returns the most likely class index for each image of the batch.
func (m *Model) Predict(batch *datasets.Batch) ([]int, error) {
	if err := m.checkBatch(batch, false); err != nil {
		return nil, err
	}
	classes := make([]int, batch.Len())
	for i := range classes {
		classes[i] = argMax(m.probabilities(batch.Image(i)))
	}
	return classes, nil
}

// trainStep applies one SGD update over the batch and returns its summed
// loss and number of correct predictions.
//
// Label vectors are normalized to sum to 1, so files with several labels
// split the target probability among them.
func (m *Model) trainStep(batch *datasets.Batch) (loss float64, correct int) {
	n := batch.Len()
	lr := float32(m.Config.LearningRate / float64(n))
	gradW := make([][]float32, len(m.weights))
	for c := range gradW {
		gradW[c] = make([]float32, m.Config.InputDim)
	}
	gradB := make([]float32, len(m.biases))

	for ex := 0; ex < n; ex++ {
		input, label := batch.Image(ex), batch.Label(ex)
		probs := m.probabilities(input)
		var labelSum float32
		for _, v := range label {
			labelSum += v
		}
		if labelSum == 0 {
			labelSum = 1
		}
		if label[argMax(probs)] > 0 {
			correct++
		}
		for c, p := range probs {
			target := float64(label[c] / labelSum)
			if target > 0 {
				loss -= target * math.Log(math.Max(p, 1e-12))
			}
			delta := float32(p - target)
			gradB[c] += delta
			row := gradW[c]
			for i, x := range input {
				row[i] += delta * x
			}
		}
	}

	for c, row := range m.weights {
		m.biases[c] -= lr * gradB[c]
		for i := range row {
			row[i] -= lr * gradW[c][i]
		}
	}
	return loss, correct
}

// Train pulls Config.StepsPerEpoch batches from src per epoch and updates the
// model. Empty batches (end of a pass over the directory) are skipped and not
// counted as steps. Mean "loss" and "acc" of each epoch are reported to rec,
// if it is not nil.
func (m *Model) Train(src BatchSource, rec Recorder) error {
	if src == nil {
		return errors.New("batch source is nil")
	}
	for epoch := 0; epoch < m.Config.Epochs; epoch++ {
		var totalLoss float64
		var totalCorrect, totalExamples, emptyInARow int
		for step := 0; step < m.Config.StepsPerEpoch; {
			batch, err := src.Next()
			if err != nil {
				return errors.WithMessagef(err, "epoch %d, step %d", epoch, step)
			}
			if batch.Len() == 0 {
				// Two empty batches in a row: a whole pass without images.
				emptyInARow++
				if emptyInARow > 1 {
					return errors.New("batch source yields no images")
				}
				continue
			}
			emptyInARow = 0
			if err := m.checkBatch(batch, true); err != nil {
				return err
			}
			loss, correct := m.trainStep(batch)
			totalLoss += loss
			totalCorrect += correct
			totalExamples += batch.Len()
			step++
		}
		logs := map[string]float64{
			"loss": totalLoss / float64(totalExamples),
			"acc":  float64(totalCorrect) / float64(totalExamples),
		}
		klog.V(1).Infof("epoch %d: loss=%.4f acc=%.3f", epoch, logs["loss"], logs["acc"])
		if rec != nil {
			rec.OnEpochEnd(epoch, logs)
		}
	}
	return nil
}

func argMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
