package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "orgatlas/pkg/domain-errors"
)

func TestParseID(t *testing.T) {
	t.Run("accepts positive decimal", func(t *testing.T) {
		id, err := ParseLocationID("42")
		require.NoError(t, err)
		assert.Equal(t, LocationID(42), id)
	})

	t.Run("accepts max int64", func(t *testing.T) {
		id, err := ParseOrganizationID("9223372036854775807")
		require.NoError(t, err)
		assert.Equal(t, OrganizationID(9223372036854775807), id)
	})

	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"zero", "0"},
		{"negative", "-3"},
		{"not a number", "abc"},
		{"float", "1.5"},
		{"leading whitespace", " 7"},
		{"SQL injection attempt", "1; DROP TABLE organizations;--"},
		{"overflow", "9223372036854775808"},
		{"oversized input", strings.Repeat("1", 100)},
		{"null byte", "1\x00"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := ParseAddressID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestParseID_NamesEntityInMessage(t *testing.T) {
	_, err := ParseCoordinatesID("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid coordinates id")
}

// TestAllIDTypes_ConsistentBehavior ensures every identifier type parses the same way.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	for _, input := range []string{"1", "", "0", "x"} {
		_, errLoc := ParseLocationID(input)
		_, errCoord := ParseCoordinatesID(input)
		_, errAddr := ParseAddressID(input)
		_, errOrg := ParseOrganizationID(input)

		assert.Equal(t, errLoc == nil, errCoord == nil, input)
		assert.Equal(t, errLoc == nil, errAddr == nil, input)
		assert.Equal(t, errLoc == nil, errOrg == nil, input)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "12", AddressID(12).String())
	assert.Equal(t, "7", ImportID(7).String())
}
