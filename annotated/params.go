package annotated

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/route"
)

// source is where a request field is read from.
type source int

const (
	sourcePath source = iota + 1
	sourceQuery
	sourceHeader
	sourceParam
	sourceBody
	sourceBean
)

// sourceTags maps struct tags to sources, in lookup order.
var sourceTags = []struct {
	tag string
	src source
}{
	{"path", sourcePath},
	{"query", sourceQuery},
	{"header", sourceHeader},
	{"param", sourceParam},
	{"body", sourceBody},
	{"bean", sourceBean},
}

// param is one tagged member of a request struct.
type param struct {
	name     string
	src      source
	doc      string
	def      string
	hasDef   bool
	index    int
	typ      reflect.Type
	children []param
}

func (p param) optional() bool {
	return p.hasDef || p.typ.Kind() == reflect.Pointer
}

// parseParams reads the tagged members of a request struct. A request
// type that is not a struct carries no parameters.
func parseParams(t reflect.Type) ([]param, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil
	}
	return parseStruct(t, map[reflect.Type]bool{})
}

func parseStruct(t reflect.Type, seen map[reflect.Type]bool) ([]param, error) {
	if seen[t] {
		return nil, fmt.Errorf("annotated: %v: recursive bean", t)
	}
	seen[t] = true
	defer delete(seen, t)

	var out []param
	for i := range t.NumField() {
		sf := t.Field(i)
		p, ok, err := parseField(sf)
		if err != nil {
			return nil, fmt.Errorf("annotated: %v.%s: %w", t, sf.Name, err)
		}
		if !ok {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("annotated: %v.%s: tagged field is not exported", t, sf.Name)
		}
		p.index = i
		if p.src == sourceBean {
			bt := sf.Type
			if bt.Kind() == reflect.Pointer {
				bt = bt.Elem()
			}
			if bt.Kind() != reflect.Struct {
				return nil, fmt.Errorf("annotated: %v.%s: bean must be a struct", t, sf.Name)
			}
			if p.children, err = parseStruct(bt, seen); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func parseField(sf reflect.StructField) (param, bool, error) {
	var (
		p     param
		found bool
	)
	for _, st := range sourceTags {
		name, ok := sf.Tag.Lookup(st.tag)
		if !ok {
			continue
		}
		if found {
			return param{}, false, fmt.Errorf("more than one source tag")
		}
		found = true
		name, _, _ = strings.Cut(name, ",")
		if name == "" {
			name = sf.Name
		}
		p.name = name
		p.src = st.src
	}
	if !found {
		return param{}, false, nil
	}
	p.typ = sf.Type
	p.doc = sf.Tag.Get("doc")
	p.def, p.hasDef = sf.Tag.Lookup("default")
	return p, true, nil
}

// describeParams converts parsed parameters to field descriptions. A
// "param" member is a PATH field when any mapping declares it and a QUERY
// field otherwise. Template parameters that no member declares are
// described as required strings.
func describeParams(r *docs.Resolver, params []param, mappings []*route.PathMapping) ([]docs.FieldInfo, error) {
	fields, err := describeLevel(r, params, mappings)
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool)
	var mark func([]param)
	mark = func(ps []param) {
		for _, p := range ps {
			switch p.src {
			case sourcePath, sourceParam:
				declared[p.name] = true
			case sourceBean:
				mark(p.children)
			}
		}
	}
	mark(params)

	for _, m := range mappings {
		for _, name := range m.ParamNames() {
			if declared[name] {
				continue
			}
			declared[name] = true
			fields = append(fields, docs.NewFieldInfo(name, docs.STRING, docs.LocationPath, docs.RequirementRequired))
		}
	}
	return fields, nil
}

func describeLevel(r *docs.Resolver, params []param, mappings []*route.PathMapping) ([]docs.FieldInfo, error) {
	out := make([]docs.FieldInfo, 0, len(params))
	for _, p := range params {
		req := docs.RequirementRequired
		if p.optional() {
			req = docs.RequirementOptional
		}

		sig, err := r.Resolve(p.typ)
		if err != nil {
			return nil, fmt.Errorf("annotated: parameter %q: %w", p.name, err)
		}

		var f docs.FieldInfo
		switch p.src {
		case sourcePath:
			f = docs.NewFieldInfo(p.name, sig, docs.LocationPath, req)
		case sourceQuery:
			f = docs.NewFieldInfo(p.name, sig, docs.LocationQuery, req)
		case sourceHeader:
			f = docs.NewFieldInfo(p.name, sig, docs.LocationHeader, req)
		case sourceParam:
			loc := docs.LocationQuery
			if declaresParam(mappings, p.name) {
				loc = docs.LocationPath
			}
			f = docs.NewFieldInfo(p.name, sig, loc, req)
		case sourceBody:
			f = docs.NewFieldInfo(p.name, sig, docs.LocationBody, req)
			if children, err := bodyChildren(r, p.typ); err != nil {
				return nil, err
			} else if len(children) > 0 {
				f = f.WithChildren(children...)
			}
		case sourceBean:
			children, err := describeLevel(r, p.children, mappings)
			if err != nil {
				return nil, err
			}
			f = docs.NewFieldInfo(p.name, sig, docs.LocationUnspecified, req).WithChildren(children...)
		}
		out = append(out, f.WithDoc(p.doc))
	}
	return out, nil
}

// bodyChildren describes the members of a struct body, read from the body
// itself.
func bodyChildren(r *docs.Resolver, t reflect.Type) ([]docs.FieldInfo, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return nil, nil
	}
	if _, ok := reflect.New(t).Interface().(docs.Container); ok {
		return nil, nil
	}
	fields, err := r.Fields(t)
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i].Location = docs.LocationBody
	}
	return fields, nil
}

func declaresParam(mappings []*route.PathMapping, name string) bool {
	for _, m := range mappings {
		if m.HasParam(name) {
			return true
		}
	}
	return false
}
