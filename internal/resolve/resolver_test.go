package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragcore/internal/ragtypes"
	"ragcore/internal/vectorstore"
)

func seedStore(t *testing.T) vectorstore.Store {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	docs := []ragtypes.Document{
		{DocumentID: "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4", TenantID: "t1", SourceFilename: "quarterly-report.pdf", Title: "Quarterly Report"},
		{DocumentID: "doc-two", TenantID: "t1", SourceFilename: "onboarding-guide.docx", Title: "Onboarding Guide"},
	}
	for _, d := range docs {
		require.NoError(t, store.UpsertHeader(context.Background(), d), "seed UpsertHeader")
	}
	return store
}

func TestResolveExactHexID(t *testing.T) {
	r := New(seedStore(t))

	ids, err := r.Resolve(context.Background(), []string{"A1B2C3D4E5F6A1B2C3D4E5F6A1B2C3D4"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"}, ids, "expected exact hex match")
}

func TestResolveExactFilename(t *testing.T) {
	r := New(seedStore(t))

	ids, err := r.Resolve(context.Background(), []string{"onboarding-guide.docx"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-two"}, ids, "expected filename match")
}

func TestResolveFuzzyTitle(t *testing.T) {
	r := New(seedStore(t))

	ids, err := r.Resolve(context.Background(), []string{"Quarterly Reprot"}, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"}, ids, "expected fuzzy title match")
}

func TestResolveUnionAcrossHandles(t *testing.T) {
	r := New(seedStore(t))

	ids, err := r.Resolve(context.Background(), []string{"onboarding-guide.docx", "Quarterly Report"}, "t1")
	require.NoError(t, err)
	assert.Len(t, ids, 2, "expected union of both handles")
}

func TestDiceCoefficient(t *testing.T) {
	assert.NotZero(t, diceCoefficient("night", "nacht"), "partially overlapping strings")
	assert.LessOrEqual(t, diceCoefficient("abc", "xyz"), 0.3, "disjoint strings")
	assert.Equal(t, 1.0, diceCoefficient("same", "same"), "identical strings")
}
