package kernel

import (
	"strings"

	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

// UnknownLocality is the sentinel grouping key used when an address carries no
// usable locality information. Orders with unrecoverable addresses still batch
// together rather than failing allocation.
const UnknownLocality = "unknown"

// ErrLocalityIsNotConstructed is returned when attempting to use an improperly
// initialized Locality. Localities must be created via LocalityFromAddress or
// LocalityFromString.
var ErrLocalityIsNotConstructed = errs.NewValueIsRequiredError(
	"locality must be created via LocalityFromAddress or LocalityFromString constructors")

// Address is the structured delivery address consumed from the address
// collaborator. Only District participates in grouping; the remaining fields
// travel along for display and routing.
type Address struct {
	Street   string
	District string
	City     string
}

// Locality is the normalized grouping key that co-locates orders destined for
// nearby stops into the same batch. It is an immutable value object; batch
// grouping correctness depends on exact key equality, so all derivation goes
// through this type and is never re-done inline at call sites.
//
// Normalization: trim surrounding whitespace, case-fold, collapse inner runs
// of whitespace to single spaces. Empty input and the literal strings "null"
// and "undefined" (artifacts of upstream serialization) map to UnknownLocality.
//
// Example:
//
//	loc := kernel.LocalityFromAddress(kernel.Address{District: "  Riverside "})
//	loc.Key() // "riverside"
type Locality struct { //nolint:recvcheck //using for validation
	key   string
	guard guard.ConstructorGuard
}

// LocalityFromAddress derives the grouping key from a delivery address.
// The function is total: malformed input yields the UnknownLocality sentinel,
// never an error.
func LocalityFromAddress(address Address) Locality {
	return LocalityFromString(address.District)
}

// LocalityFromString normalizes a raw locality value into a grouping key.
// Deterministic: the same input always yields the same key.
func LocalityFromString(raw string) Locality {
	return Locality{
		key:   normalizeLocalityKey(raw),
		guard: guard.NewConstructorGuard(),
	}
}

func normalizeLocalityKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.Fields(key), " ")

	switch key {
	case "", "null", "undefined":
		return UnknownLocality
	}
	return key
}

// Key returns the normalized grouping key.
func (l Locality) Key() string {
	return l.key
}

// IsUnknown reports whether this locality is the fallback sentinel.
func (l Locality) IsUnknown() bool {
	return l.key == UnknownLocality
}

// IsEqual compares two localities by exact key equality.
func (l Locality) IsEqual(other Locality) bool {
	return l.key == other.key
}

// String implements fmt.Stringer.
func (l Locality) String() string {
	return l.key
}

// Validate ensures the Locality was created through a constructor.
func (l Locality) Validate() error {
	return l.guard.Validate(ErrLocalityIsNotConstructed)
}
