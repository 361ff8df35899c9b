package classifier

import (
	"math"

	"github.com/mikey/email-scam-classifier/internal/core"
)

// NaiveBayes scores email text with fitted multinomial naive Bayes
// parameters. Read-only after construction, safe for concurrent use.
type NaiveBayes struct {
	artifact *Artifact
}

// ModelType identifies the model.
func (n *NaiveBayes) ModelType() string {
	return ModelMultinomialNB
}

// Predict returns the argmax class per text, lowest index winning ties.
func (n *NaiveBayes) Predict(texts []string) ([]int, error) {
	classes := make([]int, len(texts))
	for i, text := range texts {
		joint := n.jointLogLikelihood(text)
		best := 0
		for c := 1; c < numClasses; c++ {
			if joint[c] > joint[best] {
				best = c
			}
		}
		classes[i] = best
	}
	return classes, nil
}

// PredictProba returns normalized per-class probabilities per text.
func (n *NaiveBayes) PredictProba(texts []string) ([][]float64, error) {
	probs := make([][]float64, len(texts))
	for i, text := range texts {
		probs[i] = softmax(n.jointLogLikelihood(text))
	}
	return probs, nil
}

// jointLogLikelihood computes log P(class) + sum over tokens of
// count * log P(token|class), skipping out-of-vocabulary tokens.
func (n *NaiveBayes) jointLogLikelihood(text string) [numClasses]float64 {
	counts := n.artifact.featurize(text)

	var joint [numClasses]float64
	for c := 0; c < numClasses; c++ {
		ll := n.artifact.ClassLogPrior[c]
		for idx, count := range counts {
			ll += float64(count) * n.artifact.FeatureLogProb[c][idx]
		}
		joint[c] = ll
	}
	return joint
}

// softmax converts joint log likelihoods to probabilities, subtracting the
// max first for numerical stability.
func softmax(joint [numClasses]float64) []float64 {
	max := joint[0]
	for _, v := range joint[1:] {
		if v > max {
			max = v
		}
	}

	probs := make([]float64, numClasses)
	var sum float64
	for c, v := range joint {
		probs[c] = math.Exp(v - max)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

var _ core.ProbabilisticClassifier = (*NaiveBayes)(nil)
