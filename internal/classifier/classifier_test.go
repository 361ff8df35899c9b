package classifier

import (
	"math"
	"testing"

	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/mikey/email-scam-classifier/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVocabulary mirrors a tiny trained vectorizer. "url" is in the
// vocabulary because the normalizer's sentinel token is a real feature in
// the trained pipeline.
func testVocabulary() map[string]int {
	return map[string]int{
		"free":     0,
		"money":    1,
		"url":      2,
		"meeting":  3,
		"schedule": 4,
	}
}

func nbArtifact() *Artifact {
	logs := func(ps ...float64) []float64 {
		out := make([]float64, len(ps))
		for i, p := range ps {
			out[i] = math.Log(p)
		}
		return out
	}
	return &Artifact{
		ModelType:     ModelMultinomialNB,
		Normalizer:    normalize.DefaultConfig(),
		Vocabulary:    testVocabulary(),
		ClassLogPrior: logs(0.5, 0.5),
		FeatureLogProb: [][]float64{
			logs(0.05, 0.05, 0.10, 0.40, 0.40), // ham: meeting, schedule
			logs(0.35, 0.35, 0.20, 0.05, 0.05), // spam: free, money, url
		},
	}
}

func linearArtifact() *Artifact {
	return &Artifact{
		ModelType:  ModelLinear,
		Normalizer: normalize.DefaultConfig(),
		Vocabulary: testVocabulary(),
		Weights:    []float64{2, 2, 1, -3, -1},
		Intercept:  -1,
	}
}

func TestNaiveBayesPredict(t *testing.T) {
	clf, err := FromArtifact(nbArtifact())
	require.NoError(t, err)

	classes, err := clf.Predict([]string{
		"FREE money at http://scam.example now!",
		"meeting schedule for tuesday",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{core.ClassSpam, core.ClassNotSpam}, classes)
}

func TestNaiveBayesPredictProba(t *testing.T) {
	clf, err := FromArtifact(nbArtifact())
	require.NoError(t, err)
	nb, ok := clf.(core.ProbabilisticClassifier)
	require.True(t, ok, "naive Bayes artifact must support probabilities")

	probs, err := nb.PredictProba([]string{"free free money", "schedule a meeting"})
	require.NoError(t, err)
	require.Len(t, probs, 2)

	for _, p := range probs {
		require.Len(t, p, 2)
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
	}
	assert.Greater(t, probs[0][core.ClassSpam], probs[0][core.ClassNotSpam])
	assert.Greater(t, probs[1][core.ClassNotSpam], probs[1][core.ClassSpam])
}

func TestNaiveBayesOutOfVocabularyFallsToPrior(t *testing.T) {
	clf, err := FromArtifact(nbArtifact())
	require.NoError(t, err)
	nb := clf.(core.ProbabilisticClassifier)

	// No token survives featurization, so both classes sit at their equal
	// priors and the lowest index wins.
	probs, err := nb.PredictProba([]string{"zebra quux flibbertigibbet"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, probs[0][0], 1e-9)
	assert.InDelta(t, 0.5, probs[0][1], 1e-9)

	classes, err := nb.Predict([]string{"zebra quux flibbertigibbet"})
	require.NoError(t, err)
	assert.Equal(t, core.ClassNotSpam, classes[0])
}

func TestNaiveBayesUsesEmbeddedNormalizer(t *testing.T) {
	clf, err := FromArtifact(nbArtifact())
	require.NoError(t, err)

	// The URL collapses to the "url" sentinel, a spam-leaning feature.
	classes, err := clf.Predict([]string{"Visit http://a.example http://b.example http://c.example"})
	require.NoError(t, err)
	assert.Equal(t, core.ClassSpam, classes[0])
}

func TestLinearPredict(t *testing.T) {
	clf, err := FromArtifact(linearArtifact())
	require.NoError(t, err)

	_, ok := clf.(core.ProbabilisticClassifier)
	assert.False(t, ok, "linear artifact must not claim probability support")

	classes, err := clf.Predict([]string{
		"free money!!!",            // 2+2-1 = 3 > 0
		"meeting schedule meeting", // -3-1-3-1 = -8
		"nothing in vocabulary",    // intercept only, -1
	})
	require.NoError(t, err)
	assert.Equal(t, []int{core.ClassSpam, core.ClassNotSpam, core.ClassNotSpam}, classes)
}

func TestLinearZeroScoreIsHam(t *testing.T) {
	a := linearArtifact()
	a.Intercept = 0
	clf, err := FromArtifact(a)
	require.NoError(t, err)

	classes, err := clf.Predict([]string{"out of vocabulary entirely"})
	require.NoError(t, err)
	assert.Equal(t, core.ClassNotSpam, classes[0])
}

func TestFromArtifactValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Artifact)
	}{
		{"empty vocabulary", func(a *Artifact) { a.Vocabulary = nil }},
		{"unknown model type", func(a *Artifact) { a.ModelType = "perceptron" }},
		{"missing priors", func(a *Artifact) { a.ClassLogPrior = nil }},
		{"wrong prior count", func(a *Artifact) { a.ClassLogPrior = []float64{0} }},
		{"wrong probability row count", func(a *Artifact) { a.FeatureLogProb = a.FeatureLogProb[:1] }},
		{"short probability row", func(a *Artifact) { a.FeatureLogProb[1] = a.FeatureLogProb[1][:2] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := nbArtifact()
			tt.mutate(a)
			_, err := FromArtifact(a)
			assert.Error(t, err)
		})
	}

	t.Run("linear weight count mismatch", func(t *testing.T) {
		a := linearArtifact()
		a.Weights = a.Weights[:3]
		_, err := FromArtifact(a)
		assert.Error(t, err)
	})
}
