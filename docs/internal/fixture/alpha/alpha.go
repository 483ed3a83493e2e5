// Package alpha holds types whose names clash with types in sibling
// packages.
package alpha

// Item shares its name with beta.Item and other/alpha.Item.
type Item struct {
	A string `json:"a"`
}

// Time shares its name with a well-known base type.
type Time struct {
	Zone string `json:"zone"`
}
