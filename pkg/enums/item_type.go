package enums

import "fmt"

// ItemType classifies an order line item for seller resolution and fee rates.
type ItemType string

const (
	ItemTypeRelease ItemType = "release"
	ItemTypeTrack   ItemType = "track"
	ItemTypeMerch   ItemType = "merch"
	ItemTypeCrate   ItemType = "crate"
)

var validItemTypes = []ItemType{
	ItemTypeRelease,
	ItemTypeTrack,
	ItemTypeMerch,
	ItemTypeCrate,
}

// String implements fmt.Stringer.
func (t ItemType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ItemType.
func (t ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsMusic reports whether the item is billed at the music platform rate.
// Merchandise is the only class billed at the higher rate.
func (t ItemType) IsMusic() bool {
	return t != ItemTypeMerch
}

// IsPhysical reports whether the item ships physically.
func (t ItemType) IsPhysical() bool {
	return t == ItemTypeRelease || t == ItemTypeMerch || t == ItemTypeCrate
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
