// Package session implements the timed exam-taking engine: answer
// normalization, per-question scoring with negative marking, the session
// countdown, and the attempt state machine that ties them together.
package session

import (
	"strings"

	"github.com/eduprep/exam-service/internal/models"
)

// Normalize reduces any accepted option/answer representation to a single
// comparable string. Labeled objects resolve text, then label, then value,
// then id, then fall back to a stable serialization of the whole object.
// Collections normalize element-wise and join with commas. The zero value
// maps to the empty string. Total: every input produces some string.
func Normalize(v models.OptionValue) string {
	switch {
	case v.Collection != nil:
		parts := make([]string, len(v.Collection))
		for i, item := range v.Collection {
			parts[i] = Normalize(item)
		}
		return strings.TrimSpace(strings.Join(parts, ","))
	case v.Labeled != nil:
		return strings.TrimSpace(normalizeLabeled(v.Labeled))
	default:
		return strings.TrimSpace(v.Primitive)
	}
}

func normalizeLabeled(o *models.LabeledOption) string {
	switch {
	case o.Text != "":
		return o.Text
	case o.Label != "":
		return o.Label
	case o.Value != "":
		return o.Value
	case o.ID != "":
		return o.ID
	default:
		return o.StableSerialization()
	}
}

// NormalizeSet reduces a value to its set form for order-independent
// comparison: elements are normalized individually, empties dropped and
// duplicates collapsed. A scalar becomes a one-element set (or empty).
func NormalizeSet(v models.OptionValue) map[string]struct{} {
	set := make(map[string]struct{})
	if v.Collection != nil {
		for _, item := range v.Collection {
			if s := Normalize(item); s != "" {
				set[s] = struct{}{}
			}
		}
		return set
	}
	if s := Normalize(v); s != "" {
		set[s] = struct{}{}
	}
	return set
}
