package model

// Priority buckets assigned to extracted manifesto promises
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ManifestoStatus tracks fulfilment of a manifesto promise
type ManifestoStatus string

const (
	ManifestoPending   ManifestoStatus = "pending"
	ManifestoFulfilled ManifestoStatus = "fulfilled"
	ManifestoFailed    ManifestoStatus = "failed"
	ManifestoOngoing   ManifestoStatus = "ongoing"
)

// ParseManifestoStatus validates a manifesto claim status
func ParseManifestoStatus(s string) (ManifestoStatus, bool) {
	switch ManifestoStatus(s) {
	case ManifestoPending, ManifestoFulfilled, ManifestoFailed, ManifestoOngoing:
		return ManifestoStatus(s), true
	}
	return "", false
}

// ManifestoClaim is one promise extracted from a party manifesto
type ManifestoClaim struct {
	ID                 string          `json:"id"`
	Text               string          `json:"text"`
	Priority           Priority        `json:"priority"`
	Category           string          `json:"category"`
	Status             ManifestoStatus `json:"status"`
	ProgressPercentage int             `json:"progressPercentage"`
	EvidenceURL        string          `json:"evidenceUrl,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// ManifestoDocument is an uploaded manifesto and its extracted promises
type ManifestoDocument struct {
	ID              string           `json:"id"`
	Party           string           `json:"party"`
	Year            int              `json:"year"`
	UploadDate      string           `json:"uploadDate"`
	ExtractedClaims []ManifestoClaim `json:"extractedClaims"`
	Content         string           `json:"content,omitempty"`
}

// Completion is the share of fulfilled promises as a rounded percentage
func (d ManifestoDocument) Completion() int {
	fulfilled := 0
	for _, c := range d.ExtractedClaims {
		if c.Status == ManifestoFulfilled {
			fulfilled++
		}
	}
	return Percent(fulfilled, len(d.ExtractedClaims))
}
