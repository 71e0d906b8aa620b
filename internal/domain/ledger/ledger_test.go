package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Exists(t *testing.T) {
	assert.False(t, Document[string]{EmployeeID: "e1"}.Exists())
	assert.True(t, Document[string]{EmployeeID: "e1", Version: 1}.Exists())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2024, time.January))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2023, time.February))
	assert.Equal(t, 30, DaysIn(2024, time.November))
	assert.Equal(t, 31, DaysIn(2024, time.December))
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	d, err := ParseDate("2024-03-15", loc)
	require.NoError(t, err)
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, loc, d.Location())

	_, err = ParseDate("15-03-2024", loc)
	assert.Error(t, err)
}
