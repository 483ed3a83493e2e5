package docs

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Enum is implemented by named types with a closed set of constants.
// EnumValues is called on the zero value and must return the constant
// names in declaration order.
//
//	type Color string
//
//	func (Color) EnumValues() []string { return []string{"RED", "GREEN"} }
type Enum interface {
	EnumValues() []string
}

// Container is implemented by generic wrapper types that are neither lists
// nor maps, such as futures. Go reflection cannot see type arguments, so
// the wrapper reports them itself. A nil entry is an unbound argument.
type Container interface {
	ContainerTypeArgs() []reflect.Type
}

// ResolutionError reports a type that has no TypeSignature.
type ResolutionError struct {
	Type   reflect.Type
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("docs: cannot resolve type %v: %s", e.Type, e.Reason)
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	rawJSONType  = reflect.TypeFor[json.RawMessage]()
	errorType    = reflect.TypeFor[error]()
	enumType     = reflect.TypeFor[Enum]()
	containerTyp = reflect.TypeFor[Container]()
)

// Resolver converts Go types to TypeSignatures and collects descriptors of
// the named enum, struct, and exception types it meets. Struct descriptors
// are memoized per type, which also cuts self-referential recursion.
//
// A Resolver is not safe for concurrent use; it lives for one build.
type Resolver struct {
	enums      map[string]EnumInfo
	structs    map[string]StructInfo
	exceptions map[string]ExceptionInfo

	visited   map[reflect.Type]bool
	typeNames map[reflect.Type]string   // type -> chosen name
	nameTypes map[string]reflect.Type   // name -> type that claimed it
	claims    map[string][]reflect.Type // simple name -> every type met with it
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		enums:      make(map[string]EnumInfo),
		structs:    make(map[string]StructInfo),
		exceptions: make(map[string]ExceptionInfo),
		visited:    make(map[reflect.Type]bool),
		typeNames:  make(map[reflect.Type]string),
		nameTypes:  make(map[string]reflect.Type),
		claims:     make(map[string][]reflect.Type),
	}
}

// Stable returns an empty resolver that names every type r has met without
// regard to the order it met them in. A simple name shared by several
// types is qualified by package for all of them; qualified names that
// still collide get a numeric suffix in package path order.
//
// Resolving the same types again with the returned resolver yields the
// same document whatever order discovery ran in.
func (r *Resolver) Stable() *Resolver {
	s := NewResolver()
	for _, simple := range slices.Sorted(maps.Keys(r.claims)) {
		types := r.claims[simple]
		if len(types) == 1 && !isWellKnown(simple) {
			s.assign(types[0], simple)
			continue
		}
		sorted := slices.Clone(types)
		slices.SortFunc(sorted, func(a, b reflect.Type) int {
			if c := cmp.Compare(a.PkgPath(), b.PkgPath()); c != 0 {
				return c
			}
			return cmp.Compare(a.String(), b.String())
		})
		for _, t := range sorted {
			s.assign(t, s.freeName(qualifiedName(t), t))
		}
	}
	return s
}

// ambiguous reports whether the names handed out so far depend on the
// order types were met in.
func (r *Resolver) ambiguous() bool {
	for _, types := range r.claims {
		if len(types) > 1 {
			return true
		}
	}
	return false
}

func (r *Resolver) assign(t reflect.Type, name string) {
	r.typeNames[t] = name
	r.nameTypes[name] = t
	r.claim(t)
}

func (r *Resolver) claim(t reflect.Type) {
	simple := simpleName(t)
	if !slices.Contains(r.claims[simple], t) {
		r.claims[simple] = append(r.claims[simple], t)
	}
}

// freeName returns base, or base with the first numeric suffix not
// claimed by another type.
func (r *Resolver) freeName(base string, t reflect.Type) string {
	name := base
	for i := 2; ; i++ {
		other, taken := r.nameTypes[name]
		if (!taken || other == t) && !isWellKnown(name) {
			return name
		}
		name = base + strconv.Itoa(i)
	}
}

// NamedTypes returns copies of the descriptors collected so far.
func (r *Resolver) NamedTypes() NamedTypes {
	var n NamedTypes
	n.merge(NamedTypes{Enums: r.enums, Structs: r.structs, Exceptions: r.exceptions})
	return n
}

// Resolve returns the signature of t. Pointers resolve to their element;
// optionality is a property of the field, not the type.
func (r *Resolver) Resolve(t reflect.Type) (TypeSignature, error) {
	if t == nil {
		return OfUnresolved(""), nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return OfBase(TypeTime), nil
	case durationType:
		return OfBase(TypeDuration), nil
	case rawJSONType:
		return OfBase(TypeJSONNode), nil
	}

	if t.Kind() != reflect.Interface {
		if implements(t, enumType) {
			return r.resolveEnum(t)
		}
		if implements(t, containerTyp) {
			return r.resolveContainer(t)
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return BOOLEAN, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return INT, nil
	case reflect.Int64, reflect.Uint, reflect.Uint64:
		return LONG, nil
	case reflect.Float32:
		return FLOAT, nil
	case reflect.Float64:
		return DOUBLE, nil
	case reflect.String:
		return STRING, nil

	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return BINARY, nil
		}
		elem, err := r.Resolve(t.Elem())
		if err != nil {
			return TypeSignature{}, err
		}
		return OfList(elem), nil

	case reflect.Map:
		key, err := r.Resolve(t.Key())
		if err != nil {
			return TypeSignature{}, err
		}
		value, err := r.Resolve(t.Elem())
		if err != nil {
			return TypeSignature{}, err
		}
		return OfMap(key, value), nil

	case reflect.Func:
		args := make([]reflect.Type, 0, t.NumIn()+t.NumOut())
		for i := range t.NumIn() {
			args = append(args, t.In(i))
		}
		for i := range t.NumOut() {
			args = append(args, t.Out(i))
		}
		return r.container(nameOr(t, "func"), args)

	case reflect.Chan:
		return r.container("chan", []reflect.Type{t.Elem()})

	case reflect.Interface:
		if t.NumMethod() == 0 {
			return OfUnresolved(""), nil
		}
		return TypeSignature{}, &ResolutionError{Type: t, Reason: "non-empty interface"}

	case reflect.Struct:
		return r.resolveStruct(t)
	}

	return TypeSignature{}, &ResolutionError{Type: t, Reason: "unsupported kind " + t.Kind().String()}
}

// RegisterException records t, a struct implementing error, as an
// exception type and returns its signature.
func (r *Resolver) RegisterException(t reflect.Type) (TypeSignature, error) {
	if t == nil {
		return TypeSignature{}, &ResolutionError{Reason: "nil exception type"}
	}
	if !implements(t, errorType) {
		return TypeSignature{}, &ResolutionError{Type: t, Reason: "does not implement error"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return TypeSignature{}, &ResolutionError{Type: t, Reason: "exception must be a struct"}
	}
	name, err := r.nameOf(t)
	if err != nil {
		return TypeSignature{}, err
	}
	if _, ok := r.exceptions[name]; !ok {
		r.exceptions[name] = ExceptionInfo{Name: name}
		fields, err := r.Fields(t)
		if err != nil {
			delete(r.exceptions, name)
			return TypeSignature{}, err
		}
		r.exceptions[name] = ExceptionInfo{Name: name, Fields: fields}
	}
	return OfBase(name), nil
}

// Fields returns the member tree of struct type t. Member names follow the
// json tag; members tagged omitempty or held by pointer are OPTIONAL.
// Embedded structs are flattened into their parent.
func (r *Resolver) Fields(t reflect.Type) ([]FieldInfo, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &ResolutionError{Type: t, Reason: "not a struct"}
	}
	var out []FieldInfo
	if err := r.collectFields(t, &out, map[reflect.Type]bool{t: true}); err != nil {
		return nil, err
	}
	return out, nil
}

// collectFields appends the members of t. flattening holds the embedded
// structs on the current path; embedding one of them again is skipped.
func (r *Resolver) collectFields(t reflect.Type, out *[]FieldInfo, flattening map[reflect.Type]bool) error {
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		ft := sf.Type
		if sf.Anonymous && name == "" {
			et := ft
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && !implements(et, containerTyp) && et != timeType {
				if flattening[et] {
					continue
				}
				flattening[et] = true
				err := r.collectFields(et, out, flattening)
				delete(flattening, et)
				if err != nil {
					return err
				}
				continue
			}
			if !sf.IsExported() {
				continue
			}
		}
		if name == "" {
			name = sf.Name
		}

		sig, err := r.Resolve(ft)
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
		req := RequirementRequired
		if ft.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty") {
			req = RequirementOptional
		}
		*out = append(*out, NewFieldInfo(name, sig, LocationUnspecified, req).WithDoc(sf.Tag.Get("doc")))
	}
	return nil
}

func (r *Resolver) resolveEnum(t reflect.Type) (TypeSignature, error) {
	name, err := r.nameOf(t)
	if err != nil {
		return TypeSignature{}, err
	}
	if !r.visited[t] {
		r.visited[t] = true
		values := zeroOf(t, enumType).(Enum).EnumValues()
		info := EnumInfo{Name: name, Values: make([]EnumValueInfo, len(values))}
		for i, v := range values {
			info.Values[i] = EnumValueInfo{Name: v}
		}
		r.enums[name] = info
	}
	return OfEnum(name), nil
}

func (r *Resolver) resolveContainer(t reflect.Type) (TypeSignature, error) {
	return r.container(nameOr(t, t.Kind().String()), zeroOf(t, containerTyp).(Container).ContainerTypeArgs())
}

func (r *Resolver) container(name string, args []reflect.Type) (TypeSignature, error) {
	sigs := make([]TypeSignature, len(args))
	for i, a := range args {
		if a == nil || (a.Kind() == reflect.Interface && a.NumMethod() == 0) {
			sigs[i] = OfUnresolved("")
			continue
		}
		sig, err := r.Resolve(a)
		if err != nil {
			return TypeSignature{}, err
		}
		sigs[i] = sig
	}
	return OfContainer(name, sigs...), nil
}

func (r *Resolver) resolveStruct(t reflect.Type) (TypeSignature, error) {
	if t.Name() == "" {
		return TypeSignature{}, &ResolutionError{Type: t, Reason: "anonymous struct"}
	}
	name, err := r.nameOf(t)
	if err != nil {
		return TypeSignature{}, err
	}
	if !r.visited[t] {
		r.visited[t] = true
		fields, err := r.Fields(t)
		if err != nil {
			return TypeSignature{}, err
		}
		r.structs[name] = StructInfo{Name: name, Fields: fields}
	}
	return OfBase(name), nil
}

// nameOf picks the descriptor name of a named type. The simple name wins
// unless another type holds it or it is a well-known base name; then the
// name is qualified by package, with a numeric suffix if that is taken too.
// See Stable for names that do not depend on resolution order.
func (r *Resolver) nameOf(t reflect.Type) (string, error) {
	if name, ok := r.typeNames[t]; ok {
		return name, nil
	}
	simple := simpleName(t)
	if simple == "" {
		return "", &ResolutionError{Type: t, Reason: "unnamed type"}
	}
	name := simple
	if other, taken := r.nameTypes[name]; (taken && other != t) || isWellKnown(name) {
		name = r.freeName(qualifiedName(t), t)
	}
	r.assign(t, name)
	return name, nil
}

// simpleName strips package and generic arguments: "Future[int]" becomes
// "Future".
func simpleName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func qualifiedName(t reflect.Type) string {
	pkg := t.PkgPath()
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	if pkg == "" {
		return simpleName(t)
	}
	return pkg + "." + simpleName(t)
}

func nameOr(t reflect.Type, fallback string) string {
	if name := simpleName(t); name != "" {
		return name
	}
	return fallback
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface))
}

// zeroOf returns a zero value of t implementing iface, taking its address
// when only the pointer type carries the method.
func zeroOf(t, iface reflect.Type) any {
	if t.Implements(iface) {
		return reflect.Zero(t).Interface()
	}
	return reflect.New(t).Interface()
}
