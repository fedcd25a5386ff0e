package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/cache"
	"github.com/ppiankov/pap/internal/model"
)

const manifestoText = `We will build 500 megawatts of new hydropower capacity within five years.
The party shall reduce income tax for families earning under one lakh rupees.
We promise to double the number of tourists visiting Pokhara by 2028.
Thank you.`

func ptr[T any](v T) *T { return &v }

func TestManifestoTracker_AddAndList(t *testing.T) {
	tr := NewManifestoTracker(nil, zap.NewNop())
	tr.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	doc, err := tr.Add(" Nepali Congress ", 2022, manifestoText)
	require.NoError(t, err)
	require.Equal(t, "Nepali Congress", doc.Party)
	require.Equal(t, "2025-03-01", doc.UploadDate)
	require.Len(t, doc.ExtractedClaims, 3)
	for _, c := range doc.ExtractedClaims {
		require.Equal(t, model.ManifestoPending, c.Status)
		require.Equal(t, model.PriorityHigh, c.Priority)
	}

	second, err := tr.Add("UML", 0, "We will end load shedding in every district.")
	require.NoError(t, err)
	require.Equal(t, 2025, second.Year)

	list := tr.List()
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, 0, list[1].Completion)
}

func TestManifestoTracker_RejectsEmptyInput(t *testing.T) {
	tr := NewManifestoTracker(nil, zap.NewNop())

	_, err := tr.Add("", 2022, manifestoText)
	require.ErrorIs(t, err, ErrInvalidManifesto)
	_, err = tr.Add("UML", 2022, "   ")
	require.ErrorIs(t, err, ErrInvalidManifesto)
	require.Empty(t, tr.List())
}

func TestManifestoTracker_UpdateClaimAndCompletion(t *testing.T) {
	tr := NewManifestoTracker(nil, zap.NewNop())
	doc, err := tr.Add("Nepali Congress", 2022, manifestoText)
	require.NoError(t, err)
	first := doc.ExtractedClaims[0].ID

	c, err := tr.UpdateClaim(doc.ID, first, ManifestoUpdate{
		Status:      ptr(string(model.ManifestoFulfilled)),
		EvidenceURL: ptr(" https://example.com/report "),
	})
	require.NoError(t, err)
	require.Equal(t, model.ManifestoFulfilled, c.Status)
	require.Equal(t, 100, c.ProgressPercentage)
	require.Equal(t, "https://example.com/report", c.EvidenceURL)

	c, err = tr.UpdateClaim(doc.ID, doc.ExtractedClaims[1].ID, ManifestoUpdate{
		Status:   ptr(string(model.ManifestoOngoing)),
		Progress: ptr(40),
		Notes:    ptr("budget allocated"),
	})
	require.NoError(t, err)
	require.Equal(t, 40, c.ProgressPercentage)

	// 1 of 3 fulfilled
	require.Equal(t, 33, tr.List()[0].Completion)

	got, ok := tr.Get(doc.ID)
	require.True(t, ok)
	require.Equal(t, "budget allocated", got.ExtractedClaims[1].Notes)
}

func TestManifestoTracker_UpdateErrors(t *testing.T) {
	tr := NewManifestoTracker(nil, zap.NewNop())
	doc, err := tr.Add("UML", 2022, manifestoText)
	require.NoError(t, err)
	id := doc.ExtractedClaims[0].ID

	_, err = tr.UpdateClaim("missing", id, ManifestoUpdate{})
	require.ErrorIs(t, err, ErrManifestoNotFound)
	_, err = tr.UpdateClaim(doc.ID, "missing", ManifestoUpdate{})
	require.ErrorIs(t, err, ErrManifestoNotFound)
	_, err = tr.UpdateClaim(doc.ID, id, ManifestoUpdate{Status: ptr("done")})
	require.ErrorIs(t, err, ErrInvalidManifesto)
	_, err = tr.UpdateClaim(doc.ID, id, ManifestoUpdate{Progress: ptr(101)})
	require.ErrorIs(t, err, ErrInvalidManifesto)
}

func TestManifestoTracker_PersistsToCache(t *testing.T) {
	backend := cache.NewDiskCache(t.TempDir(), 0)
	store := cache.NewStore(backend, zap.NewNop())

	tr := NewManifestoTracker(store, zap.NewNop())
	doc, err := tr.Add("RSP", 2022, manifestoText)
	require.NoError(t, err)
	_, err = tr.UpdateClaim(doc.ID, doc.ExtractedClaims[2].ID, ManifestoUpdate{Status: ptr(string(model.ManifestoFailed))})
	require.NoError(t, err)

	reloaded := NewManifestoTracker(cache.NewStore(backend, zap.NewNop()), zap.NewNop())
	got, ok := reloaded.Get(doc.ID)
	require.True(t, ok)
	require.Equal(t, model.ManifestoFailed, got.ExtractedClaims[2].Status)

	_, ok = backend.Get(cache.PrimaryKey(cache.CollectionManifestos))
	require.True(t, ok)
	_, ok = backend.Get(cache.PrimaryKey(cache.CollectionClaims))
	require.False(t, ok)
}

func TestManifestoTracker_IgnoresCorruptCache(t *testing.T) {
	backend := cache.NewMemoryCache(0, 0)
	require.NoError(t, backend.Set(cache.PrimaryKey(cache.CollectionManifestos), []byte("{not json"), 0))

	tr := NewManifestoTracker(cache.NewStore(backend, zap.NewNop()), zap.NewNop())
	require.Empty(t, tr.List())

	require.NoError(t, backend.Set(cache.PrimaryKey(cache.CollectionManifestos), []byte(`[{"partyName":"no id"}, 7]`), 0))
	require.Empty(t, NewManifestoTracker(cache.NewStore(backend, zap.NewNop()), zap.NewNop()).List())
}
