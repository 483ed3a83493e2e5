// Package beta holds types whose names clash with types in sibling
// packages.
package beta

// Item shares its name with alpha.Item.
type Item struct {
	B int `json:"b"`
}
