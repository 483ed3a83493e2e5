package docs

import "encoding/json"

// FieldLocation tells where a field is read from in a request.
type FieldLocation int

const (
	LocationUnspecified FieldLocation = iota
	LocationHeader
	LocationPath
	LocationQuery
	LocationBody
)

var locationNames = [...]string{
	LocationUnspecified: "UNSPECIFIED",
	LocationHeader:      "HEADER",
	LocationPath:        "PATH",
	LocationQuery:       "QUERY",
	LocationBody:        "BODY",
}

func (l FieldLocation) String() string {
	if int(l) < len(locationNames) {
		return locationNames[l]
	}
	return locationNames[LocationUnspecified]
}

// MarshalText implements encoding.TextMarshaler.
func (l FieldLocation) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// FieldRequirement tells whether a field must be present.
type FieldRequirement int

const (
	RequirementUnspecified FieldRequirement = iota
	RequirementRequired
	RequirementOptional
)

var requirementNames = [...]string{
	RequirementUnspecified: "UNSPECIFIED",
	RequirementRequired:    "REQUIRED",
	RequirementOptional:    "OPTIONAL",
}

func (r FieldRequirement) String() string {
	if int(r) < len(requirementNames) {
		return requirementNames[r]
	}
	return requirementNames[RequirementUnspecified]
}

// MarshalText implements encoding.TextMarshaler.
func (r FieldRequirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// FieldInfo describes one named input or structured member. Composite
// fields carry their members in ChildFieldInfos; leaf fields have none.
type FieldInfo struct {
	Name            string           `json:"name" yaml:"name"`
	Location        FieldLocation    `json:"location" yaml:"location"`
	Requirement     FieldRequirement `json:"requirement" yaml:"requirement"`
	TypeSignature   TypeSignature    `json:"typeSignature" yaml:"typeSignature"`
	ChildFieldInfos []FieldInfo      `json:"childFieldInfos" yaml:"childFieldInfos"`
	DocString       string           `json:"docString,omitempty" yaml:"docString,omitempty"`
}

// NewFieldInfo returns a field with the given location and requirement.
// A PATH field is always REQUIRED because it cannot be absent when the
// route matched.
func NewFieldInfo(name string, sig TypeSignature, loc FieldLocation, req FieldRequirement) FieldInfo {
	if loc == LocationPath {
		req = RequirementRequired
	}
	return FieldInfo{
		Name:          name,
		Location:      loc,
		Requirement:   req,
		TypeSignature: sig,
	}
}

// WithDoc returns a copy of the field with the doc string set.
func (f FieldInfo) WithDoc(doc string) FieldInfo {
	f.DocString = doc
	return f
}

// WithChildren returns a copy of the field with the given member fields.
func (f FieldInfo) WithChildren(children ...FieldInfo) FieldInfo {
	f.ChildFieldInfos = append([]FieldInfo(nil), children...)
	return f
}

// Equal reports structural equality of the whole field tree.
func (f FieldInfo) Equal(o FieldInfo) bool {
	if f.Name != o.Name || f.Location != o.Location || f.Requirement != o.Requirement ||
		f.DocString != o.DocString || !f.TypeSignature.Equal(o.TypeSignature) {
		return false
	}
	return fieldsEqual(f.ChildFieldInfos, o.ChildFieldInfos)
}

// MarshalJSON keeps ChildFieldInfos as an empty array for leaf fields.
func (f FieldInfo) MarshalJSON() ([]byte, error) {
	type plain FieldInfo
	p := plain(f)
	if p.ChildFieldInfos == nil {
		p.ChildFieldInfos = []FieldInfo{}
	}
	return json.Marshal(p)
}

func fieldsEqual(a, b []FieldInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// walkSignatures calls fn for every signature in the field tree.
func (f FieldInfo) walkSignatures(fn func(TypeSignature)) {
	f.TypeSignature.walk(fn)
	for _, c := range f.ChildFieldInfos {
		c.walkSignatures(fn)
	}
}
