package docs

import (
	"encoding/json"
	"strings"
)

// TypeSignatureKind identifies the shape of a TypeSignature.
type TypeSignatureKind int

const (
	KindBase TypeSignatureKind = iota
	KindEnum
	KindList
	KindMap
	KindContainer
	KindUnresolved
)

var kindNames = [...]string{
	KindBase:       "BASE",
	KindEnum:       "ENUM",
	KindList:       "LIST",
	KindMap:        "MAP",
	KindContainer:  "CONTAINER",
	KindUnresolved: "UNRESOLVED",
}

func (k TypeSignatureKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Canonical names of well-known base types.
const (
	TypeBoolean  = "boolean"
	TypeInt      = "int"
	TypeLong     = "long"
	TypeFloat    = "float"
	TypeDouble   = "double"
	TypeString   = "string"
	TypeBinary   = "binary"
	TypeTime     = "Time"
	TypeDuration = "Duration"
	TypeJSONNode = "JsonNode"
)

// Commonly used base signatures.
var (
	BOOLEAN = OfBase(TypeBoolean)
	INT     = OfBase(TypeInt)
	LONG    = OfBase(TypeLong)
	FLOAT   = OfBase(TypeFloat)
	DOUBLE  = OfBase(TypeDouble)
	STRING  = OfBase(TypeString)
	BINARY  = OfBase(TypeBinary)
)

// TypeSignature describes the shape of a value independently of any Go type.
// The zero value is not valid; use one of the Of* constructors, which are
// the only way to satisfy the per-kind type argument invariants.
type TypeSignature struct {
	kind     TypeSignatureKind
	name     string
	typeArgs []TypeSignature
}

// OfBase returns a signature for a primitive or named structured type.
func OfBase(name string) TypeSignature {
	return TypeSignature{kind: KindBase, name: name}
}

// OfEnum returns a signature for an enumeration.
func OfEnum(name string) TypeSignature {
	return TypeSignature{kind: KindEnum, name: name}
}

// OfList returns a signature for a homogeneous ordered collection.
func OfList(elem TypeSignature) TypeSignature {
	return TypeSignature{kind: KindList, name: "list", typeArgs: []TypeSignature{elem}}
}

// OfMap returns a signature for a keyed collection.
func OfMap(key, value TypeSignature) TypeSignature {
	return TypeSignature{kind: KindMap, name: "map", typeArgs: []TypeSignature{key, value}}
}

// OfContainer returns a signature for a generic wrapper that is neither a
// list nor a map, such as a future or a user-defined generic type.
func OfContainer(name string, args ...TypeSignature) TypeSignature {
	var copied []TypeSignature
	if len(args) > 0 {
		copied = make([]TypeSignature, len(args))
		copy(copied, args)
	}
	return TypeSignature{kind: KindContainer, name: name, typeArgs: copied}
}

// OfUnresolved returns a signature for a type that could not be bound,
// such as a wildcard type argument.
func OfUnresolved(name string) TypeSignature {
	return TypeSignature{kind: KindUnresolved, name: name}
}

// Kind returns the signature kind.
func (s TypeSignature) Kind() TypeSignatureKind { return s.kind }

// Name returns the signature name.
func (s TypeSignature) Name() string { return s.name }

// TypeArgs returns a copy of the type arguments.
func (s TypeSignature) TypeArgs() []TypeSignature {
	if len(s.typeArgs) == 0 {
		return nil
	}
	out := make([]TypeSignature, len(s.typeArgs))
	copy(out, s.typeArgs)
	return out
}

// IsNamed reports whether the signature refers to a named type that may
// have a struct, enum, or exception descriptor.
func (s TypeSignature) IsNamed() bool {
	return (s.kind == KindBase && !isWellKnown(s.name)) || s.kind == KindEnum
}

// Equal reports structural equality.
func (s TypeSignature) Equal(o TypeSignature) bool {
	if s.kind != o.kind || s.name != o.name || len(s.typeArgs) != len(o.typeArgs) {
		return false
	}
	for i := range s.typeArgs {
		if !s.typeArgs[i].Equal(o.typeArgs[i]) {
			return false
		}
	}
	return true
}

// Signature renders the canonical text form of the signature:
//
//	int
//	list<string>
//	map<string, long>
//	Future<?>
func (s TypeSignature) Signature() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s TypeSignature) write(b *strings.Builder) {
	if s.kind == KindUnresolved {
		b.WriteByte('?')
		b.WriteString(s.name)
		return
	}
	b.WriteString(s.name)
	if len(s.typeArgs) == 0 {
		return
	}
	b.WriteByte('<')
	for i, arg := range s.typeArgs {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.write(b)
	}
	b.WriteByte('>')
}

// String implements fmt.Stringer.
func (s TypeSignature) String() string {
	return s.Signature()
}

// MarshalJSON encodes the signature as its canonical text form.
func (s TypeSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Signature())
}

// MarshalYAML encodes the signature as its canonical text form.
func (s TypeSignature) MarshalYAML() (any, error) {
	return s.Signature(), nil
}

// walk calls fn for s and every nested type argument, depth first.
func (s TypeSignature) walk(fn func(TypeSignature)) {
	fn(s)
	for _, arg := range s.typeArgs {
		arg.walk(fn)
	}
}

func isWellKnown(name string) bool {
	switch name {
	case TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeString,
		TypeBinary, TypeTime, TypeDuration, TypeJSONNode:
		return true
	}
	return false
}
