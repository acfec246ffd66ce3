package catalog

import (
	"fmt"
	"strings"

	"brewpos/internal/core/apperror"
)

// Size is the closed vocabulary of product-variant sizes.
// The zero value means "no size given".
type Size string

const (
	SizeNone   Size = ""
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

var sizeSynonyms = map[string]Size{
	"s":      SizeSmall,
	"small":  SizeSmall,
	"küçük":  SizeSmall,
	"kucuk":  SizeSmall,
	"m":      SizeMedium,
	"medium": SizeMedium,
	"orta":   SizeMedium,
	"l":      SizeLarge,
	"large":  SizeLarge,
	"büyük":  SizeLarge,
	"buyuk":  SizeLarge,
}

// ParseSize canonicalizes a size label. Blank input yields SizeNone.
func ParseSize(label string) (Size, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return SizeNone, nil
	}
	if s, ok := sizeSynonyms[key]; ok {
		return s, nil
	}
	return SizeNone, apperror.NewValidation(fmt.Sprintf("unknown size %q", label)).
		WithDetail("allowed", []string{"S", "M", "L", "Small", "Medium", "Large"})
}

// IsValidSizeLabel reports whether label parses (blank included).
func IsValidSizeLabel(label string) bool {
	_, err := ParseSize(label)
	return err == nil
}

// IsNone reports whether no size was given.
func (s Size) IsNone() bool { return s == SizeNone }

// Ptr returns nil for SizeNone, which is how the generic recipe is stored.
func (s Size) Ptr() *Size {
	if s == SizeNone {
		return nil
	}
	return &s
}

// OrMedium maps an absent size to the medium tier (used for cup selection).
func (s Size) OrMedium() Size {
	if s == SizeNone {
		return SizeMedium
	}
	return s
}

func (s Size) String() string {
	if s == SizeNone {
		return "standard"
	}
	return string(s)
}

// SizeFromPtr converts a stored nullable size back to a Size.
func SizeFromPtr(p *Size) Size {
	if p == nil {
		return SizeNone
	}
	return *p
}
