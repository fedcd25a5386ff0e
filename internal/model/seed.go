package model

// SeedClaimants is the bundled dataset shown in demo/offline mode. Their
// statistics are derived from SeedClaims.
func SeedClaimants() []Claimant {
	claims := SeedClaims()
	claimants := []Claimant{
		{
			ID:          "c1",
			Name:        "Dr. Ramesh Sharma",
			Bio:         "Lead Economist at Nepal Policy Institute. Former advisor to the Ministry of Finance.",
			Affiliation: "Independent",
			PhotoURL:    "https://picsum.photos/seed/ramesh/200/200",
			Tags:        []string{"Economy", "Public Policy", "Finance"},
		},
		{
			ID:          "c2",
			Name:        "Jyotish Guru Shanti",
			Bio:         "Renowned Vedic Astrologer based in Kathmandu with over 20 years of experience in political horoscopes.",
			Affiliation: "Spiritual Center",
			PhotoURL:    "https://picsum.photos/seed/shanti/200/200",
			Tags:        []string{"Astrology", "Spirituality", "Predictions"},
		},
		{
			ID:          "c3",
			Name:        "Bikash Thapa",
			Bio:         "Infrastructure and Energy Analyst focusing on Hydropower projects in the Himalayas.",
			Affiliation: "Hydro Watch Nepal",
			PhotoURL:    "https://picsum.photos/seed/bikash/200/200",
			Tags:        []string{"Hydropower", "Infrastructure", "Energy"},
		},
	}
	for i := range claimants {
		claimants[i] = RefreshClaimant(claimants[i], claims)
	}
	return claimants
}

// SeedClaims is the bundled claim dataset shown in demo/offline mode
func SeedClaims() []Claim {
	claims := []Claim{
		{
			ID:             "1",
			ClaimantID:     "c1",
			Text:           "Nepal's GDP will grow by exactly 5.2% in the fiscal year 2024/25.",
			DateMade:       "2023-05-12",
			TargetDate:     "2025-07-15",
			Category:       CategoryEconomy,
			Status:         StatusOngoing,
			Sources:        []ClaimSource{{Type: SourceNews, URL: "https://example.com/news/1"}},
			VaguenessIndex: 2,
		},
		{
			ID:             "2",
			ClaimantID:     "c2",
			Text:           "A major political shift will happen in Nepal within the next 3 months due to planetary alignments.",
			DateMade:       "2024-01-10",
			TargetDate:     "2024-04-10",
			Category:       CategoryAstrology,
			Status:         StatusDisproven,
			Sources:        []ClaimSource{{Type: SourceNews, URL: "https://example.com/news/2"}},
			VaguenessIndex: 9,
		},
		{
			ID:             "3",
			ClaimantID:     "c3",
			Text:           "The Upper Tamakoshi project will reach full capacity by December 2023.",
			DateMade:       "2022-08-15",
			TargetDate:     "2023-12-31",
			Category:       CategoryHydropower,
			Status:         StatusFulfilled,
			Sources:        []ClaimSource{{Type: SourceNews, URL: "https://example.com/news/3"}},
			VaguenessIndex: 1,
		},
	}
	for i := range claims {
		claims[i].Normalize()
	}
	return claims
}
