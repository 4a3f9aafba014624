package csvutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreScanRoster_HeaderPicksColumn(t *testing.T) {
	in := "Name,Email\nAda Lovelace,ADA@test.com\nGrace Hopper,grace@test.com\n"
	r, err := PreScanRoster(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@test.com", "grace@test.com"}, r.Emails)
	assert.False(t, r.HasErrors())
}

func TestPreScanRoster_NoHeader(t *testing.T) {
	in := "ada@test.com\n\ngrace@test.com,extra\nada@test.com\n"
	r, err := PreScanRoster(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@test.com", "grace@test.com"}, r.Emails)
}

func TestPreScanRoster_BadRows(t *testing.T) {
	in := "email\nada@test.com\nnot-an-address\n"
	r, err := PreScanRoster(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@test.com"}, r.Emails)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, 3, r.Errors[0].Line)
	assert.Equal(t, "not-an-address", r.Errors[0].Value)
}

func TestPreScanRoster_Empty(t *testing.T) {
	r, err := PreScanRoster(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, r.Emails)
}
