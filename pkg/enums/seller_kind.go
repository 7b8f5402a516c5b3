package enums

import "fmt"

// SellerKind identifies which kind of seller earns revenue from an item.
type SellerKind string

const (
	SellerKindArtist      SellerKind = "artist"
	SellerKindSupplier    SellerKind = "supplier"
	SellerKindCrateSeller SellerKind = "crate_seller"
)

var validSellerKinds = []SellerKind{
	SellerKindArtist,
	SellerKindSupplier,
	SellerKindCrateSeller,
}

// String implements fmt.Stringer.
func (k SellerKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SellerKind.
func (k SellerKind) IsValid() bool {
	for _, candidate := range validSellerKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseSellerKind converts raw input into a SellerKind.
func ParseSellerKind(value string) (SellerKind, error) {
	for _, candidate := range validSellerKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller kind %q", value)
}
