package heuristic

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ppiankov/pap/internal/model"
)

func TestVagueness(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"bare vague", "things will get better", 10},
		{"digit only", "we will open 3 offices", 9},
		{"year and digit", "growth returns in 2026", 8},
		{"month name", "prices fall in March", 9},
		{"named actor", "Ramesh Sharma says things improve", 9},
		{"all three", "Ramesh Sharma says GDP grows 7 percent in 2026", 7},
		{"long text", strings.Repeat("a", 210), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Vagueness(tt.text); got != tt.want {
				t.Errorf("Vagueness(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestVagueness_LengthRoundsHalfUp(t *testing.T) {
	if got := Vagueness(strings.Repeat("x", 69)); got != 10 {
		t.Errorf("69 runes should round to 0, got score %d", got)
	}
	if got := Vagueness(strings.Repeat("x", 70)); got != 9 {
		t.Errorf("70 runes should round to 1, got score %d", got)
	}
	if got := Vagueness(strings.Repeat("न", 70)); got != 9 {
		t.Errorf("length counts runes, got score %d", got)
	}
}

func TestVagueness_SubtractionCapped(t *testing.T) {
	text := "Bikash Thapa promised 5000 MW by December 2030. " + strings.Repeat("more detail ", 200)
	if got := Vagueness(text); got != 2 {
		t.Errorf("expected floor of 2, got %d", got)
	}
}

func TestVagueness_SpecificClaimBound(t *testing.T) {
	base := "Pushpa Kamal will finish 12 bridges by 2027"
	for _, pad := range []int{0, 60, 140, 300, 500} {
		text := base + strings.Repeat(" and more", pad/9)
		bonus := (2*utf8.RuneCountInString(text) + 140) / 280
		bound := 10 - 3 - bonus
		if bound < 1 {
			bound = 1
		}
		got := Vagueness(text)
		if got > bound {
			t.Errorf("len %d: score %d exceeds bound %d", utf8.RuneCountInString(text), got, bound)
		}
		if got < 1 || got > 10 {
			t.Errorf("score %d out of range", got)
		}
	}
}

func TestVagueness_Deterministic(t *testing.T) {
	text := "The Melamchi project will supply Kathmandu by April 2025."
	first := Vagueness(text)
	for i := 0; i < 50; i++ {
		if Vagueness(text) != first {
			t.Fatal("Vagueness is not deterministic")
		}
	}
}

func TestVerifiabilityParams_StableShape(t *testing.T) {
	inputs := []string{"", "nothing specific", "Dr. Ramesh Sharma will build 500 MW in Kathmandu by 2027 because of demand."}
	want := Labels()
	if len(want) != 10 {
		t.Fatalf("expected 10 labels, got %d", len(want))
	}

	for _, in := range inputs {
		first := VerifiabilityParams(in)
		second := VerifiabilityParams(in)
		if len(first) != 10 {
			t.Fatalf("expected 10 params for %q, got %d", in, len(first))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("param %d differs across calls for %q", i, in)
			}
			if first[i].Label != want[i] {
				t.Errorf("param %d label %q, want %q", i, first[i].Label, want[i])
			}
		}
		if !first[9].Fulfilled {
			t.Error("clear scope must always be fulfilled")
		}
	}
}

func TestVerifiabilityParams_Predicates(t *testing.T) {
	params := VerifiabilityParams("Dr. Ramesh Sharma will build 500 MW in Kathmandu by 2027 because demand will increase.")
	got := map[string]bool{}
	for _, p := range params {
		got[p.Label] = p.Fulfilled
	}

	for _, label := range []string{LabelSpecificDate, LabelNamedActor, LabelQuantified, LabelLocation,
		LabelCausal, LabelModal, LabelTimeBound, LabelMeasurable, LabelAction} {
		if !got[label] {
			t.Errorf("expected %s to fire", label)
		}
	}

	vague := VerifiabilityParams("things might improve someday")
	for _, p := range vague[:9] {
		if p.Fulfilled {
			t.Errorf("did not expect %s to fire on a vague claim", p.Label)
		}
	}
}

func TestExplainVagueness_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, "very vague"},
		{8, "very vague"},
		{7, "somewhat vague"},
		{6, "somewhat vague"},
		{5, "moderately clear"},
		{4, "moderately clear"},
		{3, "is clear"},
		{1, "is clear"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.score), func(t *testing.T) {
			got := ExplainVagueness("prices will fall", tt.score)
			if !strings.Contains(got, tt.want) {
				t.Errorf("score %d: expected %q in %q", tt.score, tt.want, got)
			}
		})
	}
}

func TestExplainVagueness_ListsPredicates(t *testing.T) {
	got := ExplainVagueness("We will open 3 offices in Pokhara", 7)
	if !strings.Contains(got, "It includes") || !strings.Contains(got, "a geographic location") {
		t.Errorf("expected fired predicates listed, got %q", got)
	}
	if !strings.Contains(got, "It lacks") || !strings.Contains(got, "a named actor") {
		t.Errorf("expected missing predicates listed, got %q", got)
	}
	if got != ExplainVagueness("We will open 3 offices in Pokhara", 7) {
		t.Error("explanation not deterministic")
	}
}

func TestSimulateVerdicts(t *testing.T) {
	vectors := SimulateVerdicts("Inflation will drop to 5 percent by 2026", 6)
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}

	names := []string{"Economic Analyst", "Political Fact-Checker", "Logical Consistency Bot"}
	for i, v := range vectors {
		if v.ModelName != names[i] {
			t.Errorf("vector %d: name %q, want %q", i, v.ModelName, names[i])
		}
		if v.Verdict != model.StatusInconclusive {
			t.Errorf("vector %d: verdict %q, want Inconclusive", i, v.Verdict)
		}
		if v.Confidence < 0 || v.Confidence > 1 {
			t.Errorf("vector %d: confidence %v out of range", i, v.Confidence)
		}
		if v.Reasoning == "" {
			t.Errorf("vector %d: empty reasoning", i)
		}
	}

	specific := SimulateVerdicts("Inflation will drop to 5 percent by 2026", 2)
	if specific[0].Confidence <= vectors[0].Confidence {
		t.Error("a more specific score should raise confidence")
	}
}

func TestExtractManifestoClaims_Buckets(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&b, "We will build road number %d across the district. ", i)
	}
	b.WriteString("This sentence has no promise in it at all. ")

	claims := ExtractManifestoClaims(b.String())
	if len(claims) != MaxManifestoClaims {
		t.Fatalf("expected cap of %d, got %d", MaxManifestoClaims, len(claims))
	}

	for i, c := range claims {
		var want model.Priority
		switch {
		case i < 5:
			want = model.PriorityHigh
		case i < 15:
			want = model.PriorityMedium
		default:
			want = model.PriorityLow
		}
		if c.Priority != want {
			t.Errorf("claim %d priority %s, want %s", i, c.Priority, want)
		}
		if c.Status != model.ManifestoPending || c.ProgressPercentage != 0 {
			t.Errorf("claim %d not initialised as pending", i)
		}
	}
	if claims[0].ID != "mc-1" || !strings.Contains(claims[0].Text, "number 1 ") {
		t.Errorf("unexpected first claim %+v", claims[0])
	}
}

func TestExtractManifestoClaims_FiltersAndDedupes(t *testing.T) {
	text := "Our party has a long history of service. " +
		"We pledge to add 1000 MW of hydropower. " +
		"WE PLEDGE TO ADD 1000 MW OF HYDROPOWER. " +
		"Tourist arrivals will reach two million. " +
		strings.Repeat("A very long descriptive sentence without any commitment keyword ", 3) + "."

	claims := ExtractManifestoClaims(text)
	if len(claims) != 3 {
		t.Fatalf("expected 3 claims, got %d: %+v", len(claims), claims)
	}
	if claims[0].Category != string(model.CategoryHydropower) {
		t.Errorf("expected Hydropower category, got %s", claims[0].Category)
	}
	if claims[1].Category != string(model.CategoryTourism) {
		t.Errorf("expected Tourism category, got %s", claims[1].Category)
	}
}
