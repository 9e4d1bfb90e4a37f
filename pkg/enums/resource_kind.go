package enums

import "fmt"

// ResourceKind classifies downloadable partner resources.
type ResourceKind string

const (
	ResourceKindCatalog   ResourceKind = "catalog"
	ResourceKindPriceList ResourceKind = "price_list"
	ResourceKindDocument  ResourceKind = "document"
	ResourceKindImagePack ResourceKind = "image_pack"
)

var validResourceKinds = []ResourceKind{
	ResourceKindCatalog,
	ResourceKindPriceList,
	ResourceKindDocument,
	ResourceKindImagePack,
}

// IsValid reports whether the value is a known ResourceKind.
func (k ResourceKind) IsValid() bool {
	for _, candidate := range validResourceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseResourceKind converts raw input into a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, error) {
	for _, candidate := range validResourceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource kind %q", value)
}
