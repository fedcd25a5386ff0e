package model

import (
	"math"
	"sort"
	"strings"
)

// ClaimantStats are derived from the claim collection, which is authoritative
type ClaimantStats struct {
	ClaimantID    string         `json:"claimantId"`
	Total         int            `json:"total"`
	ByStatus      map[Status]int `json:"byStatus"`
	AccuracyRate  int            `json:"accuracyRate"`
	MeanVagueness float64        `json:"meanVagueness"`
}

// ComputeClaimantStats recomputes a claimant's statistics from claims
func ComputeClaimantStats(claimantID string, claims []Claim) ClaimantStats {
	stats := ClaimantStats{
		ClaimantID: claimantID,
		ByStatus:   make(map[Status]int),
	}

	vagueSum := 0
	for _, c := range claims {
		if c.ClaimantID != claimantID {
			continue
		}
		stats.Total++
		stats.ByStatus[c.Status]++
		vagueSum += c.VaguenessIndex
	}

	if stats.Total > 0 {
		stats.AccuracyRate = Percent(stats.ByStatus[StatusFulfilled], stats.Total)
		stats.MeanVagueness = math.Round(float64(vagueSum)/float64(stats.Total)*10) / 10
	}
	return stats
}

// RefreshClaimant rewrites the cached statistic fields from the claim collection.
// A claimant without claims ends up with zero totals.
func RefreshClaimant(c Claimant, claims []Claim) Claimant {
	stats := ComputeClaimantStats(c.ID, claims)
	c.TotalClaims = stats.Total
	c.AccuracyRate = stats.AccuracyRate
	c.VaguenessScore = stats.MeanVagueness
	return c
}

// Percent returns round(part/total*100), 0 for an empty total
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}

// Bucket is one labelled count in an aggregate
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DashboardStats are the aggregates shown on the dashboard
type DashboardStats struct {
	TotalClaims     int      `json:"totalClaims"`
	ByCategory      []Bucket `json:"byCategory"`
	ByStatus        []Bucket `json:"byStatus"`
	ResolvedClaims  int      `json:"resolvedClaims"`
	OverallAccuracy int      `json:"overallAccuracy"` // fulfilled / resolved
	MeanVagueness   float64  `json:"meanVagueness"`
}

// Dashboard aggregates claims by category and status, omitting empty buckets
func Dashboard(claims []Claim) DashboardStats {
	byCat := make(map[Category]int)
	byStatus := make(map[Status]int)
	vagueSum := 0
	for _, c := range claims {
		byCat[c.Category]++
		byStatus[c.Status]++
		vagueSum += c.VaguenessIndex
	}

	out := DashboardStats{
		TotalClaims: len(claims),
		ByCategory:  []Bucket{},
		ByStatus:    []Bucket{},
	}
	for _, cat := range Categories() {
		if n := byCat[cat]; n > 0 {
			out.ByCategory = append(out.ByCategory, Bucket{Name: string(cat), Count: n})
		}
	}
	for _, st := range Statuses() {
		if n := byStatus[st]; n > 0 {
			out.ByStatus = append(out.ByStatus, Bucket{Name: string(st), Count: n})
		}
		if st.Resolved() {
			out.ResolvedClaims += byStatus[st]
		}
	}
	out.OverallAccuracy = Percent(byStatus[StatusFulfilled], out.ResolvedClaims)
	if len(claims) > 0 {
		out.MeanVagueness = math.Round(float64(vagueSum)/float64(len(claims))*10) / 10
	}
	return out
}

// Topics counts claims per topic group, most used first
func Topics(claims []Claim) []Bucket {
	counts := make(map[string]int)
	for _, c := range claims {
		if t := strings.TrimSpace(c.TopicGroup); t != "" {
			counts[t]++
		}
	}

	topics := make([]Bucket, 0, len(counts))
	for name, n := range counts {
		topics = append(topics, Bucket{Name: name, Count: n})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Name < topics[j].Name
	})
	return topics
}

// FilterClaims matches query against claim text, claimant name and topic.
// An empty category or "All" matches every category.
func FilterClaims(claims []Claim, claimants []Claimant, query string, category string) []Claim {
	q := strings.ToLower(strings.TrimSpace(query))
	names := make(map[string]string, len(claimants))
	for _, cl := range claimants {
		names[cl.ID] = strings.ToLower(cl.Name)
	}

	var wantCat Category
	anyCat := category == "" || strings.EqualFold(category, "all")
	if !anyCat {
		c, ok := ParseCategory(category)
		if !ok {
			return []Claim{}
		}
		wantCat = c
	}

	out := []Claim{}
	for _, c := range claims {
		if !anyCat && c.Category != wantCat {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Text), q) &&
			!strings.Contains(names[c.ClaimantID], q) &&
			!strings.Contains(strings.ToLower(c.TopicGroup), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}
