package domain

import dErrors "rosterid/pkg/domain-errors"

// EntityKind is the category of a tracked entity.
// Invariant: the value must be one of the supported kinds.
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindTeam   EntityKind = "team"
)

var validEntityKinds = map[EntityKind]bool{
	KindPlayer: true,
	KindTeam:   true,
}

// ParseEntityKind constructs an EntityKind from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseEntityKind(s string) (EntityKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind cannot be empty")
	}
	k := EntityKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid kind")
	}
	return k, nil
}

func (k EntityKind) IsValid() bool {
	return validEntityKinds[k]
}

func (k EntityKind) String() string {
	return string(k)
}
