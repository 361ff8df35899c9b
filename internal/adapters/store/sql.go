package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mikey/email-scam-classifier/internal/classifier"
	"github.com/mikey/email-scam-classifier/internal/core"
)

// Relational artifact layout, shared by the SQLite and MySQL stores:
//
//	model_info(name, value)      -- model_type, normalizer JSON, class_log_prior JSON, intercept
//	vocabulary(term, feature_idx)
//	class_weights(class_idx, feature_idx, weight)
//
// For naive Bayes artifacts class_weights holds per-class feature log
// probabilities; for linear artifacts it holds the spam-direction weight
// vector under the spam class index.
func loadArtifact(ctx context.Context, db *sql.DB) (*classifier.Artifact, error) {
	info, err := loadModelInfo(ctx, db)
	if err != nil {
		return nil, err
	}

	artifact := &classifier.Artifact{
		ModelType: info["model_type"],
	}
	if err := json.Unmarshal([]byte(info["normalizer"]), &artifact.Normalizer); err != nil {
		return nil, fmt.Errorf("failed to parse normalizer config: %w", err)
	}

	if artifact.Vocabulary, err = loadVocabulary(ctx, db); err != nil {
		return nil, err
	}
	features := len(artifact.Vocabulary)

	switch artifact.ModelType {
	case classifier.ModelMultinomialNB:
		if err := json.Unmarshal([]byte(info["class_log_prior"]), &artifact.ClassLogPrior); err != nil {
			return nil, fmt.Errorf("failed to parse class priors: %w", err)
		}
		artifact.FeatureLogProb = [][]float64{
			make([]float64, features),
			make([]float64, features),
		}
		err = scanClassWeights(ctx, db, func(classIdx, featureIdx int, weight float64) error {
			if classIdx < 0 || classIdx >= len(artifact.FeatureLogProb) || featureIdx < 0 || featureIdx >= features {
				return fmt.Errorf("class_weights row out of range: class %d, feature %d", classIdx, featureIdx)
			}
			artifact.FeatureLogProb[classIdx][featureIdx] = weight
			return nil
		})
	case classifier.ModelLinear:
		if raw, ok := info["intercept"]; ok {
			if artifact.Intercept, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, fmt.Errorf("failed to parse intercept: %w", err)
			}
		}
		artifact.Weights = make([]float64, features)
		err = scanClassWeights(ctx, db, func(classIdx, featureIdx int, weight float64) error {
			if classIdx != core.ClassSpam {
				return fmt.Errorf("linear artifact has weights for class %d", classIdx)
			}
			if featureIdx < 0 || featureIdx >= features {
				return fmt.Errorf("class_weights row out of range: feature %d", featureIdx)
			}
			artifact.Weights[featureIdx] = weight
			return nil
		})
	default:
		return nil, fmt.Errorf("unsupported model type in store: %q", artifact.ModelType)
	}
	if err != nil {
		return nil, err
	}

	return artifact, nil
}

func loadModelInfo(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, value FROM model_info`)
	if err != nil {
		return nil, fmt.Errorf("failed to query model_info: %w", err)
	}
	defer rows.Close()

	info := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan model_info row: %w", err)
		}
		info[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model_info: %w", err)
	}
	if len(info) == 0 {
		return nil, core.ErrArtifactNotFound
	}
	return info, nil
}

func loadVocabulary(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT term, feature_idx FROM vocabulary`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary: %w", err)
	}
	defer rows.Close()

	vocab := make(map[string]int)
	for rows.Next() {
		var term string
		var idx int
		if err := rows.Scan(&term, &idx); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary row: %w", err)
		}
		vocab[term] = idx
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return vocab, nil
}

func scanClassWeights(ctx context.Context, db *sql.DB, fn func(classIdx, featureIdx int, weight float64) error) error {
	rows, err := db.QueryContext(ctx, `SELECT class_idx, feature_idx, weight FROM class_weights`)
	if err != nil {
		return fmt.Errorf("failed to query class_weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var classIdx, featureIdx int
		var weight float64
		if err := rows.Scan(&classIdx, &featureIdx, &weight); err != nil {
			return fmt.Errorf("failed to scan class_weights row: %w", err)
		}
		if err := fn(classIdx, featureIdx, weight); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read class_weights: %w", err)
	}
	return nil
}
