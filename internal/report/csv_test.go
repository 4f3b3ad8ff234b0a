package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCSV_QuotesEverything(t *testing.T) {
	got := BuildCSV([][]any{
		{"a", 1, 2.5, nil},
		{"", 0, "x,y", true},
	})
	assert.Equal(t, `"a","1","2.5",""`+"\n"+`"","0","x,y","true"`, got)
}

func TestBuildCSV_EscapesQuotes(t *testing.T) {
	got := BuildCSV([][]any{{`He said "hi"`}})
	assert.Equal(t, `"He said ""hi"""`, got)
}

func TestBuildCSV_RoundTrip(t *testing.T) {
	cells := []string{`He said "hi"`, "comma, inside", "line\nbreak", `""`, "°C", ""}
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	out := BuildCSV([][]any{row, row})
	assert.False(t, strings.HasSuffix(out, "\n"))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, cells, records[0])
	assert.Equal(t, cells, records[1])
}

func TestBuildCSV_Empty(t *testing.T) {
	assert.Equal(t, "", BuildCSV(nil))
}
