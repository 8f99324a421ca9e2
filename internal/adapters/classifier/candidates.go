package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/campoos/backend-lixeira-app/internal/core"
)

// Candidate is one entry of a ranked classifier response
type Candidate struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}

// ParseCandidates decodes a JSON array of {label, score} objects. Every entry
// must carry both fields and a score in [0, 1].
func ParseCandidates(body []byte) ([]core.ClassificationResult, error) {
	var raw []Candidate
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode candidate list: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("empty candidate list")
	}

	out := make([]core.ClassificationResult, 0, len(raw))
	for i, c := range raw {
		if c.Label == nil || c.Score == nil {
			return nil, fmt.Errorf("candidate %d is missing label or score", i)
		}
		score := *c.Score
		if math.IsNaN(score) || score < 0 || score > 1 {
			return nil, fmt.Errorf("candidate %d has score %v outside [0,1]", i, score)
		}
		out = append(out, core.ClassificationResult{Label: *c.Label, Score: score})
	}
	return out, nil
}

// TopCandidate returns the highest-scored candidate; ties keep the earlier entry.
// candidates must not be empty.
func TopCandidate(candidates []core.ClassificationResult) core.ClassificationResult {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best
}
