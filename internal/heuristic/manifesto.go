package heuristic

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/ppiankov/pap/internal/extract"
	"github.com/ppiankov/pap/internal/model"
)

const (
	// MaxManifestoClaims caps the number of extracted promises
	MaxManifestoClaims = 30
	longSentence       = 120
	highBucket         = 5
	mediumBucket       = 10
)

var (
	commitmentRe = regexp.MustCompile(`(?i)\b(?:will|shall|commit(?:s|ted)?|pledge[sd]?|promise[sd]?|ensure|guarantee[sd]?|provide|build|establish|implement|create|introduce|launch|increase|reduce|abolish|deliver|end)\b|गर्नेछौं|गरिनेछ|बनाइनेछ`)

	categoryRules = []struct {
		category model.Category
		re       *regexp.Regexp
	}{
		{model.CategoryHydropower, regexp.MustCompile(`(?i)\b(?:hydro\w*|electricity|power|megawatts?|mw|energy|dam|transmission|load.?shedding)\b`)},
		{model.CategoryTourism, regexp.MustCompile(`(?i)\b(?:touris[mt]s?|visitors?|trekking|hotels?|airport|heritage)\b`)},
		{model.CategoryEconomy, regexp.MustCompile(`(?i)\b(?:econom\w*|gdp|inflation|tax(?:es)?|jobs?|employment|invest\w*|budget|income|export|import|industr\w*|wages?|remittance)\b`)},
	}
)

func guessCategory(sentence string) model.Category {
	for _, rule := range categoryRules {
		if rule.re.MatchString(sentence) {
			return rule.category
		}
	}
	return model.CategoryPolitics
}

func priorityAt(i int) model.Priority {
	switch {
	case i < highBucket:
		return model.PriorityHigh
	case i < highBucket+mediumBucket:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// ExtractManifestoClaims pulls candidate promises out of a manifesto text blob.
// Sentences qualify by a commitment keyword or by length alone. Priority is purely
// positional: the first 5 are high, the next 10 medium, the rest low.
func ExtractManifestoClaims(text string) []model.ManifestoClaim {
	sentences := extract.Dedupe(extract.SplitSentences(text, extract.MinSentence, extract.MaxSentence))

	var out []model.ManifestoClaim
	for _, s := range sentences {
		if len(out) == MaxManifestoClaims {
			break
		}
		if !commitmentRe.MatchString(s) && utf8.RuneCountInString(s) <= longSentence {
			continue
		}
		i := len(out)
		out = append(out, model.ManifestoClaim{
			ID:       fmt.Sprintf("mc-%d", i+1),
			Text:     s,
			Priority: priorityAt(i),
			Category: string(guessCategory(s)),
			Status:   model.ManifestoPending,
		})
	}
	return out
}
