// Package disposal decides whether a classified item may go into the organic bin.
package disposal

import (
	"strings"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Policy checks labels against the organic keyword table. The table is
// built once in NewPolicy and never modified afterwards.
type Policy struct {
	keywords []string
	logger   *zap.Logger
}

// NewPolicy creates a policy from the built-in keywords plus any extras
// supplied at startup.
func NewPolicy(extra []string, logger *zap.Logger) *Policy {
	seen := make(map[string]struct{}, len(organicKeywords)+len(extra))
	keywords := make([]string, 0, len(organicKeywords)+len(extra))
	for _, group := range [][]string{organicKeywords[:], extra} {
		for _, kw := range group {
			kw = fold(kw)
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}

	if len(extra) > 0 && logger != nil {
		logger.Info("Initialized disposal policy", zap.Strings("extra_keywords", extra), zap.Int("keywords", len(keywords)))
	}

	return &Policy{
		keywords: keywords,
		logger:   logger,
	}
}

// fold normalises a label for comparison: NFC composition, then
// Unicode lower-casing, then surrounding space trimmed.
func fold(s string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(norm.NFC.String(s)))
}

// IsOrganic reports whether label contains any organic keyword as a
// case-insensitive substring. An empty label is never organic.
func (p *Policy) IsOrganic(label string) bool {
	folded := fold(label)
	if folded == "" {
		return false
	}

	for _, kw := range p.keywords {
		if strings.Contains(folded, kw) {
			if p.logger != nil {
				p.logger.Debug("Label matched organic keyword",
					zap.String("label", label),
					zap.String("keyword", kw))
			}
			return true
		}
	}

	return false
}

// DecideAction maps the verdict to the bin action
func (p *Policy) DecideAction(isOrganic bool) core.TrashAction {
	return DecideAction(isOrganic)
}

// DecideAction maps the verdict to the bin action: organic opens, anything else is denied.
func DecideAction(isOrganic bool) core.TrashAction {
	if isOrganic {
		return core.ActionOpen
	}
	return core.ActionDeny
}

// Keywords returns a copy of the active keyword table
func (p *Policy) Keywords() []string {
	out := make([]string, len(p.keywords))
	copy(out, p.keywords)
	return out
}
