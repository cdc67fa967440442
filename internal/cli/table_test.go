package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := PrintTable(&buf, []string{"ID", "Name"}, [][]string{
		{"1", "Base"},
		{"12", "Early retirement"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.True(t, strings.HasPrefix(lines[1], "----"))
	assert.Contains(t, lines[3], "Early retirement")
	// Columns line up.
	assert.Equal(t, strings.Index(lines[2], "Base"), strings.Index(lines[3], "Early"))
}

func TestEmpty(t *testing.T) {
	assert.Contains(t, Empty("profiles", "Add one with `finboard profiles add`."), "No profiles found. Add one")
	assert.Contains(t, Empty("incomes", ""), "No incomes found.")
}
