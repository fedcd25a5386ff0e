package heuristic

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/pap/internal/model"
)

func opening(score int) string {
	switch {
	case score >= 8:
		return fmt.Sprintf("This claim is very vague (%d/10) and offers little that could be checked against events.", score)
	case score >= 6:
		return fmt.Sprintf("This claim is somewhat vague (%d/10); parts of it could be verified.", score)
	case score >= 4:
		return fmt.Sprintf("This claim is moderately clear (%d/10).", score)
	default:
		return fmt.Sprintf("This claim is clear (%d/10) and can be checked against a concrete outcome.", score)
	}
}

func join(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// ExplainVagueness builds a readable explanation from the fired checklist predicates
func ExplainVagueness(text string, score int) string {
	var has, lacks []string
	for _, p := range predicates {
		if p.label == LabelScope {
			continue
		}
		if p.test(text) {
			has = append(has, p.phrase)
		} else {
			lacks = append(lacks, p.phrase)
		}
	}

	parts := []string{opening(score)}
	if len(has) > 0 {
		parts = append(parts, "It includes "+join(has)+".")
	}
	if len(lacks) > 0 {
		parts = append(parts, "It lacks "+join(lacks)+".")
	}
	return strings.Join(parts, " ")
}

type perspective struct {
	name   string
	labels []string
}

var perspectives = []perspective{
	{"Economic Analyst", []string{LabelQuantified, LabelMeasurable, LabelTimeBound}},
	{"Political Fact-Checker", []string{LabelNamedActor, LabelSpecificDate, LabelLocation}},
	{"Logical Consistency Bot", []string{LabelModal, LabelCausal, LabelAction}},
}

// SimulateVerdicts produces one Inconclusive verdict per perspective. Confidence
// grows as the score drops and as more of the perspective's predicates fire.
func SimulateVerdicts(text string, score int) []model.VerificationVector {
	score = model.ClampVagueness(score)
	f := fired(text)
	base := float64(11-score) / 10.0

	out := make([]model.VerificationVector, 0, len(perspectives))
	for _, p := range perspectives {
		var hit, miss []string
		for _, l := range p.labels {
			if f[l] {
				hit = append(hit, strings.ToLower(l))
			} else {
				miss = append(miss, strings.ToLower(l))
			}
		}

		share := float64(len(hit)) / float64(len(p.labels))
		confidence := math.Round(base*(0.3+0.5*share)*100) / 100

		var reasoning string
		switch {
		case len(hit) == 0:
			reasoning = "No " + join(miss) + " to check; the outcome cannot be assessed yet."
		case len(miss) == 0:
			reasoning = "States " + join(hit) + "; awaiting evidence of the outcome."
		default:
			reasoning = "States " + join(hit) + " but no " + join(miss) + "; awaiting evidence of the outcome."
		}

		out = append(out, model.VerificationVector{
			ModelName:  p.name,
			Verdict:    model.StatusInconclusive,
			Confidence: confidence,
			Reasoning:  reasoning,
		})
	}
	return out
}
