//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseOrganizationID checks parsing never panics and accepted values
// round-trip through String.
func FuzzParseOrganizationID(f *testing.F) {
	f.Add("")
	f.Add("1")
	f.Add("9223372036854775807")
	f.Add("-1")
	f.Add("'; DROP TABLE organizations;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseOrganizationID(input)
		if err != nil {
			return
		}
		if id <= 0 {
			t.Errorf("accepted non-positive id %d", id)
		}
		roundTrip, err := ParseOrganizationID(id.String())
		if err != nil {
			t.Errorf("valid id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
	})
}
