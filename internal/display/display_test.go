package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerlite/internal/types"
)

func TestRenderPrefersStatus(t *testing.T) {
	out := Render("1 row inserted", nil)
	assert.Equal(t, "1 row inserted", out)
}

func TestRenderEmptyRowsShowsZeroRows(t *testing.T) {
	out := Render("", nil)
	assert.Equal(t, "(0 rows)", out)
}

func TestFormatTableAlignsColumns(t *testing.T) {
	rows := []types.Row{
		{"id": 1, "name": "alice"},
		{"id": 2, "name": "bo"},
	}
	out := FormatTable(rows)
	lines := strings.Split(out, "\n")
	require := func(cond bool, msg string) {
		if !cond {
			t.Fatal(msg)
		}
	}
	require(len(lines) == 4, "expected header, separator, and two data rows")
	assert.Equal(t, "id | name ", lines[0])
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
}

func TestFormatTableRendersNull(t *testing.T) {
	rows := []types.Row{{"id": 1, "email": nil}}
	out := FormatTable(rows)
	assert.Contains(t, out, "NULL")
}

func TestRowCountMessage(t *testing.T) {
	assert.Equal(t, "0 rows updated", RowCountMessage("updated", 0))
	assert.Equal(t, "1 row deleted", RowCountMessage("deleted", 1))
	assert.Equal(t, "3 rows updated", RowCountMessage("updated", 3))
}
