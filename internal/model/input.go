package model

// ClaimInput is the create-or-edit payload for a claim. An ID naming an existing
// claim edits it; anything else creates a new claim, which needs a claimant name
// or a known claimant id.
type ClaimInput struct {
	ID                  string               `json:"id,omitempty"`
	ClaimantName        string               `json:"claimantName" validate:"omitempty,max=200"`
	ClaimantID          string               `json:"claimantId,omitempty"`
	Text                string               `json:"text" validate:"required,min=5,max=2000"`
	TargetDate          string               `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
	Category            Category             `json:"category" validate:"omitempty,category"`
	Status              Status               `json:"status" validate:"omitempty,status"`
	Sources             []ClaimSource        `json:"sources" validate:"omitempty,max=20,dive"`
	VaguenessIndex      int                  `json:"vaguenessIndex" validate:"omitempty,min=1,max=10"`
	AnalysisParams      []AnalysisParam      `json:"analysisParams" validate:"omitempty,max=30,dive"`
	VerificationVectors []VerificationVector `json:"verificationVectors" validate:"omitempty,max=10"`
	WebEvidenceLinks    []WebEvidenceLink    `json:"webEvidenceLinks" validate:"omitempty,max=20"`
	TopicGroup          string               `json:"topicGroup" validate:"omitempty,max=100"`
}

// ClaimantPatch updates claimant profile fields; nil fields are left alone
type ClaimantPatch struct {
	ID          string   `json:"id" validate:"required"`
	Bio         *string  `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Affiliation *string  `json:"affiliation,omitempty" validate:"omitempty,max=200"`
	PhotoURL    *string  `json:"photoUrl,omitempty" validate:"omitempty,url"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// Analysis is a scored claim, from the AI service or the heuristic fallback
type Analysis struct {
	VaguenessIndex      int                  `json:"vaguenessIndex"`
	AnalysisParams      []AnalysisParam      `json:"analysisParams"`
	VerificationVectors []VerificationVector `json:"verificationVectors"`
	WebEvidenceLinks    []WebEvidenceLink    `json:"webEvidenceLinks"`
	Explanation         string               `json:"explanation,omitempty"`
	BiasReport          string               `json:"biasReport,omitempty"`
	Source              string               `json:"source"` // AnalysisSourceAI or AnalysisSourceHeuristic
	Model               string               `json:"model,omitempty"`
}

const (
	AnalysisSourceAI        = "ai"
	AnalysisSourceHeuristic = "heuristic"
)
