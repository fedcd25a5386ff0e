package heuristic

import (
	"regexp"

	"github.com/ppiankov/pap/internal/model"
)

// Checklist labels, in output order
const (
	LabelSpecificDate = "Specific date"
	LabelNamedActor   = "Named actor"
	LabelQuantified   = "Quantified metric"
	LabelLocation     = "Geographic location"
	LabelCausal       = "Causal language"
	LabelModal        = "Falsifiable modal verb"
	LabelTimeBound    = "Explicit time bound"
	LabelMeasurable   = "Measurable outcome"
	LabelAction       = "Concrete action"
	LabelScope        = "Clear scope"
)

type predicate struct {
	label string
	test  func(string) bool
	// phrase completes "It includes ..." / "It lacks ..." in explanations
	phrase string
}

var (
	numericDateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`)
	metricRe      = regexp.MustCompile(`(?i)\d[\d,.]*\s*(?:%|percent|per cent|mw|gw|kw|km|kilometers?|crore|lakh|million|billion|thousand|hundred|rupees?|rs\b|npr|usd|dollars?|tons?|tonnes?|units?|seats?|votes?|jobs?|people)|(?:rs\.?|\$|npr)\s*\d`)
	locationRe    = regexp.MustCompile(`(?i)\b(?:nepal|kathmandu|pokhara|lalitpur|bhaktapur|biratnagar|birgunj|dharan|butwal|janakpur|chitwan|terai|madhesh|karnali|gandaki|lumbini|sudurpashchim|koshi|bagmati|himalaya[ns]?|everest|india|china|province|district|municipality|valley|village|city|capital|border|region)\b`)
	causalRe      = regexp.MustCompile(`(?i)\b(?:because|due to|as a result|result(?:s|ing)? in|lead(?:s)? to|will cause|caus(?:e|es|ed|ing)|therefore|consequently|thanks to|owing to)\b`)
	modalRe       = regexp.MustCompile(`(?i)\b(?:will|shall|won't|will not|must|is going to|are going to)\b`)
	timeBoundRe   = regexp.MustCompile(`(?i)\b(?:by|within|before|until|no later than|by the end of)\s+(?:the\s+)?(?:\d|end\b|next\b|this\b|coming\b|january|february|march|april|may|june|july|august|september|october|november|december|spring|summer|autumn|fall|winter|fiscal)`)
	measurableRe  = regexp.MustCompile(`(?i)\b(?:increase[sd]?|decrease[sd]?|reduce[sd]?|reach(?:es)?|grow(?:s|th)?|double[sd]?|triple[sd]?|halve[sd]?|exceed(?:s)?|drop(?:s)?|rise[s]?|fall(?:s)?|generat(?:e|es|ing)|achiev(?:e|es)|produc(?:e|es|tion)|complet(?:e|es|ed|ion)|eliminat(?:e|es)|cut(?:s)?)\b`)
	actionRe      = regexp.MustCompile(`(?i)\b(?:build|construct|launch|open|pass|sign|implement|create|deliver|install|establish|ban|abolish|hire|provide|start|introduce|enact|repeal|connect|electrify|pave|fund|allocate)\b`)
)

var predicates = []predicate{
	{LabelSpecificDate, func(s string) bool { return hasYearOrMonth(s) || numericDateRe.MatchString(s) }, "a specific date"},
	{LabelNamedActor, hasTwoCaps, "a named actor"},
	{LabelQuantified, metricRe.MatchString, "a quantified metric"},
	{LabelLocation, locationRe.MatchString, "a geographic location"},
	{LabelCausal, causalRe.MatchString, "causal language"},
	{LabelModal, modalRe.MatchString, "a definite modal verb"},
	{LabelTimeBound, timeBoundRe.MatchString, "an explicit deadline"},
	{LabelMeasurable, measurableRe.MatchString, "a measurable outcome"},
	{LabelAction, actionRe.MatchString, "a concrete action"},
	{LabelScope, func(string) bool { return true }, "a clear scope"},
}

// VerifiabilityParams evaluates the fixed 10-item checklist. Labels and order never change.
func VerifiabilityParams(text string) []model.AnalysisParam {
	out := make([]model.AnalysisParam, len(predicates))
	for i, p := range predicates {
		out[i] = model.AnalysisParam{Label: p.label, Fulfilled: p.test(text)}
	}
	return out
}

// Labels returns the checklist labels in order
func Labels() []string {
	out := make([]string, len(predicates))
	for i, p := range predicates {
		out[i] = p.label
	}
	return out
}

func fired(text string) map[string]bool {
	out := make(map[string]bool, len(predicates))
	for _, p := range predicates {
		out[p.label] = p.test(text)
	}
	return out
}
