// Package domain holds identifier primitives shared across packages.
//
// Identifiers are store-assigned positive int64 values. Each entity gets its
// own named type so a LocationID cannot be passed where an AddressID is
// expected.
package domain

import (
	"strconv"
	"strings"

	dErrors "orgatlas/pkg/domain-errors"
)

type (
	LocationID     int64
	CoordinatesID  int64
	AddressID      int64
	OrganizationID int64
	ImportID       int64
)

// ID is the constraint satisfied by every identifier type.
type ID interface {
	~int64
}

// maxIDLength bounds the input before strconv sees it. int64 has 19 digits.
const maxIDLength = 19

// ParseID parses a positive decimal identifier from a path or query value.
// kind names the entity in the error message.
func ParseID[T ID](kind, s string) (T, error) {
	if s == "" || len(s) > maxIDLength || strings.TrimSpace(s) != s {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s id", kind)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s id", kind)
	}
	return T(n), nil
}

func ParseLocationID(s string) (LocationID, error) { return ParseID[LocationID]("location", s) }

func ParseCoordinatesID(s string) (CoordinatesID, error) {
	return ParseID[CoordinatesID]("coordinates", s)
}

func ParseAddressID(s string) (AddressID, error) { return ParseID[AddressID]("address", s) }

func ParseOrganizationID(s string) (OrganizationID, error) {
	return ParseID[OrganizationID]("organization", s)
}

func (id LocationID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id CoordinatesID) String() string  { return strconv.FormatInt(int64(id), 10) }
func (id AddressID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id OrganizationID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ImportID) String() string       { return strconv.FormatInt(int64(id), 10) }
