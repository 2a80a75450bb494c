package atlas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldwalk/georoutes/game/engine"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "borders.json")
	payload := `{
		"Portugal": ["Spain"],
		"Spain": ["Portugal", "France"],
		"France": ["Spain"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	a, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Count())
	assert.Equal(t, []string{"France", "Portugal", "Spain"}, a.Countries())
	assert.True(t, a.Has("Spain"))
	assert.False(t, a.Has("spain"), "country names are case-sensitive")
	assert.Equal(t, []string{"Portugal", "France"}, a.Neighbors("Spain"))
	assert.Nil(t, a.Neighbors("Andorra"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	a := New(engine.Borders{
		"A": {"B", "B", "Ghost", "A"},
		"B": {"C"}, // missing the reverse edge to A
		"C": {"B"},
		"D": {},
	})

	warnings := a.Check()
	kinds := make(map[WarningKind]int)
	for _, w := range warnings {
		kinds[w.Kind]++
		assert.NotEmpty(t, w.String())
	}

	assert.Equal(t, 1, kinds[WarnDuplicate], "A lists B twice")
	assert.Equal(t, 1, kinds[WarnDangling], "Ghost is not in the dataset")
	assert.Equal(t, 1, kinds[WarnSelfBorder], "A lists itself")
	assert.Equal(t, 1, kinds[WarnIsolated], "D has no neighbors")
	// A->B has no reverse edge; B->C/C->B is fine.
	assert.Equal(t, 1, kinds[WarnAsymmetric])
}

func TestCheck_CleanDataset(t *testing.T) {
	a := New(engine.Borders{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B"},
	})
	assert.Empty(t, a.Check())
}

func TestComponents(t *testing.T) {
	a := New(engine.Borders{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B"},
		"X": {"Y"},
		"Y": {"X"},
	})

	components := a.Components()
	require.Len(t, components, 2)
	assert.Equal(t, []string{"A", "B", "C"}, components[0], "largest component first")
	assert.Equal(t, []string{"X", "Y"}, components[1])
}
