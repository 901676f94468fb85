package textindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchFindsUserByUsername(t *testing.T) {
	idx := Build([]Element{{ID: 0, Text: "klaus"}}, false)

	require.Equal(t, []uint64{0}, idx.Search(""))
	require.Equal(t, []uint64{0}, idx.Search("klau"))
	require.Empty(t, idx.Search("lisa"))
}

func TestSearchCaseSensitivity(t *testing.T) {
	elements := []Element{{ID: 1, Text: "Espresso"}}

	insensitive := Build(elements, false)
	require.Equal(t, []uint64{1}, insensitive.Search("espresso"))
	require.Equal(t, []uint64{1}, insensitive.Search("ESPRESSO"))

	sensitive := Build(elements, true)
	require.Equal(t, []uint64{1}, sensitive.Search("Espresso"))
	require.Empty(t, sensitive.Search("espresso"))
}

func TestSearchOnNilIndexReturnsNil(t *testing.T) {
	var idx *Index
	require.Nil(t, idx.Search("anything"))
}

func TestBuildCopiesElements(t *testing.T) {
	elements := []Element{{ID: 1, Text: "a"}}
	idx := Build(elements, false)
	elements[0].Text = "mutated"
	require.Equal(t, []uint64{1}, idx.Search("a"))
	require.Empty(t, idx.Search("mutated"))
}
