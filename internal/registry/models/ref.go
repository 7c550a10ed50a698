package models

import (
	dErrors "orgatlas/pkg/domain-errors"
)

// Ref is a nested reference that either carries an inline payload for a new
// entity or points at an existing one by identifier. The zero value is absent.
type Ref[ID comparable, P any] struct {
	inline *P
	id     *ID
}

// Inline returns a Ref that creates a new entity from p.
func Inline[ID comparable, P any](p P) Ref[ID, P] {
	return Ref[ID, P]{inline: &p}
}

// ByID returns a Ref to an existing entity.
func ByID[ID comparable, P any](id ID) Ref[ID, P] {
	return Ref[ID, P]{id: &id}
}

// NewRef builds a Ref from the two optional wire fields. Supplying both is
// rejected; supplying neither yields the absent Ref.
func NewRef[ID comparable, P any](field string, payload *P, id *ID) (Ref[ID, P], error) {
	switch {
	case payload != nil && id != nil:
		return Ref[ID, P]{}, dErrors.Newf(dErrors.CodeBadRequest,
			"cannot provide both %s and %s_id", field, field)
	case payload != nil:
		return Inline[ID](*payload), nil
	case id != nil:
		return ByID[ID, P](*id), nil
	}
	return Ref[ID, P]{}, nil
}

func (r Ref[ID, P]) IsZero() bool { return r.inline == nil && r.id == nil }

// Payload returns the inline payload, if any.
func (r Ref[ID, P]) Payload() (P, bool) {
	if r.inline == nil {
		var zero P
		return zero, false
	}
	return *r.inline, true
}

// ID returns the referenced identifier, if any.
func (r Ref[ID, P]) ID() (ID, bool) {
	if r.id == nil {
		var zero ID
		return zero, false
	}
	return *r.id, true
}
