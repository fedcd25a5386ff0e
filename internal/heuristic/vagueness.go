// Package heuristic is the local, deterministic stand-in for the AI scoring service.
// Every function here is pure: the same input always yields the same output.
package heuristic

import (
	"regexp"
	"unicode/utf8"

	"github.com/ppiankov/pap/internal/model"
)

const (
	ceiling        = 10
	maxSubtraction = 8
	lengthUnit     = 140
)

var (
	digitRe   = regexp.MustCompile(`\d`)
	yearRe    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	monthRe   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\b`)
	twoCapsRe = regexp.MustCompile(`\p{Lu}[\p{Ll}.]+\s+\p{Lu}[\p{Ll}]+`)
)

func hasDigit(text string) bool       { return digitRe.MatchString(text) }
func hasYearOrMonth(text string) bool { return yearRe.MatchString(text) || monthRe.MatchString(text) }
func hasTwoCaps(text string) bool     { return twoCapsRe.MatchString(text) }

// lengthBonus is round(runes/140) with halves rounded up
func lengthBonus(text string) int {
	n := utf8.RuneCountInString(text)
	return (2*n + lengthUnit) / (2 * lengthUnit)
}

// Vagueness scores a claim from 1 (specific, falsifiable) to 10 (vague).
//
// Starting from 10 it subtracts one point each for a digit, a year or month
// name, and a two-capitalized-word sequence, plus round(len/140). The total
// subtraction is capped at 8, so heuristic scores never go below 2.
func Vagueness(text string) int {
	sub := 0
	if hasDigit(text) {
		sub++
	}
	if hasYearOrMonth(text) {
		sub++
	}
	if hasTwoCaps(text) {
		sub++
	}
	sub += lengthBonus(text)

	if sub > maxSubtraction {
		sub = maxSubtraction
	}
	return model.ClampVagueness(ceiling - sub)
}
