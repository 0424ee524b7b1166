package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-core/internal/core/domain"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
)

// Ensure redactor implements driving.Redactor.
var _ driving.Redactor = (*redactor)(nil)

// piiCategory is one ordered detection pass. When group > 0, only that
// capture group is replaced and the surrounding match (e.g. a
// "password: " prefix) is retained verbatim.
type piiCategory struct {
	label   string
	pattern *regexp.Regexp
	group   int
}

// Detection order matters: it fixes the numbering an operator sees across
// categories and mirrors the source detector's pass ordering.
var piiCategories = []piiCategory{
	{
		label:   "EMAIL",
		pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	},
	{
		label:   "PHONE",
		pattern: regexp.MustCompile(`\b\d{3}[-.]?\d{3,4}(?:[-.]?\d{4})?\b`),
	},
	{
		label:   "API_KEY",
		pattern: regexp.MustCompile(`(?i)(?:api[_-]?key|token|secret)[:\s=]*['"]?([a-zA-Z0-9_-]{16,})['"]?`),
		group:   1,
	},
	{
		label:   "PASSWORD",
		pattern: regexp.MustCompile(`(?i)(?:password|passwd|pwd)[:\s]*['"]?([^\s'"]{8,})['"]?`),
		group:   1,
	},
}

// redactor detects and masks PII in outbound text via an ordered sequence of
// regex categories, each with its own 1-indexed placeholder counter.
type redactor struct{}

// NewRedactor constructs a Redactor.
func NewRedactor() driving.Redactor {
	return &redactor{}
}

func (r *redactor) Mask(text string) domain.MaskingRecord {
	if text == "" {
		return domain.MaskingRecord{MaskedText: text, Mappings: map[string]string{}}
	}

	mappings := make(map[string]string)
	masked := text

	for _, cat := range piiCategories {
		masked = maskCategory(masked, cat, mappings)
	}

	return domain.MaskingRecord{MaskedText: masked, Mappings: mappings}
}

func (r *redactor) Restore(masked string, mappings map[string]string) string {
	if masked == "" || len(mappings) == 0 {
		return masked
	}
	result := masked
	for placeholder, original := range mappings {
		result = strings.ReplaceAll(result, placeholder, original)
	}
	return result
}

// maskCategory replaces every match of one category's pattern, in order of
// appearance, with a numbered placeholder. When the category targets a
// capture group, only that group's text is swapped out and the rest of the
// match (a label prefix like "api_key: ") is preserved.
func maskCategory(text string, cat piiCategory, mappings map[string]string) string {
	counter := 1
	return replaceAllFunc(text, cat.pattern, func(match []string) string {
		var original string
		if cat.group > 0 && cat.group < len(match) {
			original = match[cat.group]
		} else {
			original = match[0]
		}
		if original == "" {
			return match[0]
		}

		placeholder := fmt.Sprintf("[%s_REDACTED_%d]", cat.label, counter)
		counter++
		mappings[placeholder] = original

		if cat.group > 0 {
			return strings.Replace(match[0], original, placeholder, 1)
		}
		return placeholder
	})
}

// replaceAllFunc is regexp.ReplaceAllStringFunc but the callback receives the
// full FindStringSubmatch slice, so capture groups are available for
// group-scoped replacements.
func replaceAllFunc(text string, re *regexp.Regexp, fn func(match []string) string) string {
	var out strings.Builder
	lastEnd := 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		match := make([]string, len(loc)/2)
		for i := range match {
			gs, ge := loc[2*i], loc[2*i+1]
			if gs < 0 || ge < 0 {
				continue
			}
			match[i] = text[gs:ge]
		}
		out.WriteString(text[lastEnd:start])
		out.WriteString(fn(match))
		lastEnd = end
	}
	out.WriteString(text[lastEnd:])
	return out.String()
}
