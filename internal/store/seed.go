package store

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// defaultSeed is the fixture loaded when no override is configured.
//
//go:embed questions.json
var defaultSeed []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultSeed decodes the embedded question fixture.
func DefaultSeed() ([]domain.Question, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile decodes a question fixture from path.
func LoadSeedFile(path string) ([]domain.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a question fixture. Two shapes are accepted:
//
//   - an object keyed by question id: {"1": {"id": "1", ...}, ...}
//   - a plain array: [{"id": "1", ...}, ...]
//
// For the keyed shape a record without an "id" inherits its key; a record
// whose id disagrees with its key is rejected. Empty ids are rejected in both
// shapes. The result is sorted by id; tags are normalized.
func LoadSeed(r io.Reader) ([]domain.Question, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("seed: empty fixture")
	}

	var out []domain.Question
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("seed: decode array: %w", err)
		}
	case '{':
		var keyed map[string]domain.Question
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("seed: decode object: %w", err)
		}
		out = make([]domain.Question, 0, len(keyed))
		for k, q := range keyed {
			if q.ID == "" {
				q.ID = domain.QuestionID(k)
			}
			if q.ID.String() != k {
				return nil, fmt.Errorf("seed: key %q holds question %q", k, q.ID)
			}
			out = append(out, q)
		}
	default:
		return nil, errors.New("seed: fixture must be a JSON object or array")
	}

	for i := range out {
		if _, err := domain.NewQuestionID(out[i].ID.String()); err != nil {
			return nil, fmt.Errorf("seed: record %d: %w", i, err)
		}
		out[i].Tags = domain.NormalizeTags(out[i].Tags)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
