// Package alpha has the same last path element as fixture/alpha.
package alpha

// Item shares its package-qualified name with fixture/alpha.Item.
type Item struct {
	C bool `json:"c"`
}
