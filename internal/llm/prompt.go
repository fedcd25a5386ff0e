package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPageRunes bounds the page text sent for discovery
const maxPageRunes = 12000

// SystemInstruction frames every request
const SystemInstruction = `You assess public predictions for a prediction accountability platform.
You never decide whether a claim is true today; you judge how specific and checkable it is.
Always answer with a single JSON object and nothing else.`

func languageName(lang string) string {
	if strings.EqualFold(lang, "ne") {
		return "Nepali"
	}
	return "English"
}

// BuildAnalyzePrompt asks for the scoring contract
func BuildAnalyzePrompt(req AnalyzeRequest) string {
	return fmt.Sprintf(`Analyze the following claim in depth.
Claim: %q
Language preference for free text: %s

1. Evaluate 10 parameters of verifiability (specific date, metric, actor, location, etc.).
2. Simulate 3 verification models: "Economic Analyst", "Political Fact-Checker" and "Logical Consistency Bot".
3. List up to 5 existing news or reference links related to the claim, if you know of any.

Return JSON with exactly these fields:
- vaguenessScore: integer 1-10 (1 = specific and falsifiable, 10 = vague)
- analysisParams: array of up to 10 {label, fulfilled (boolean)}
- verificationVectors: array of up to 5 {modelName, verdict (Fulfilled|Disproven|Partial|Ongoing|Inconclusive), confidence (0-1), reasoning}
- biasReport: short description of likely claimant bias
- webEvidence: array of up to 5 {title, url}`, req.ClaimText, languageName(req.Language))
}

// BuildBackgroundPrompt asks for a claimant profile
func BuildBackgroundPrompt(name string) string {
	return fmt.Sprintf(`Give public background on %q.
Return JSON: {"bio": string (2-3 sentences), "affiliations": [string], "accuracyInfo": string describing their public prediction track record, or "" if unknown}.`, name)
}

// BuildDiscoveryPrompt asks for predictions contained in page text
func BuildDiscoveryPrompt(pageText string) string {
	if utf8.RuneCountInString(pageText) > maxPageRunes {
		pageText = string([]rune(pageText)[:maxPageRunes])
	}
	return fmt.Sprintf(`Extract specific public predictions or promises from the page text below.
Return JSON: {"claims": [{"claimantName", "claimText", "category" (Politics|Economy|Astrology|Hydropower|Tourism|Manifesto Tracker), "targetDateEstimate" (YYYY-MM-DD or "")}]}.

Page text:
%s`, pageText)
}
