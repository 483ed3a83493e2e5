package docs

import (
	"maps"
	"slices"
)

// ServiceDescription is the raw output of discovery for one owning type.
// Methods may repeat a (name, verb) pair or use MethodAny; Generate
// aggregates them.
type ServiceDescription struct {
	// Name is the owning type name, e.g. "example.com/app.UserService".
	Name string

	// Plugin names the discovery front end that produced the service.
	Plugin string

	DocString string
	Methods   []MethodInfo
}

// Source is anything that can describe the services it hosts. Type
// signatures are resolved with the shared resolver so that named type
// descriptors end up in one place.
type Source interface {
	DescribeServices(r *Resolver) ([]ServiceDescription, error)
}

// Initializer is implemented by handlers that need the hosted services
// before the server accepts traffic.
type Initializer interface {
	Initialize(sources []Source) error
}

// GenerateInput carries everything Generate needs.
type GenerateInput struct {
	Services   []ServiceDescription
	NamedTypes NamedTypes

	// DocStrings maps "Service" and "Service/method" to documentation.
	// Doc strings set during discovery take precedence.
	DocStrings map[string]string

	// Include defaults to OfAll; Exclude defaults to OfNone.
	Include *Filter
	Exclude *Filter

	Examples *Examples

	// AggregateExcludedMethods is the verb set dropped when expanding
	// MethodAny. Nil means DefaultAggregateExcludedMethods.
	AggregateExcludedMethods []HTTPMethod
}

// Generate builds a specification. The result is deterministic for equal
// inputs and is not retained by the package.
func Generate(in GenerateInput) (*ServiceSpecification, error) {
	include := OfAll()
	if in.Include != nil {
		include = *in.Include
	}
	exclude := OfNone()
	if in.Exclude != nil {
		exclude = *in.Exclude
	}

	spec := &ServiceSpecification{}
	for _, desc := range mergeDescriptions(in.Services) {
		methods, err := Aggregate(desc.Name, desc.Methods, in.AggregateExcludedMethods)
		if err != nil {
			return nil, err
		}

		kept := methods[:0]
		for _, m := range methods {
			if !include.Test(desc.Plugin, desc.Name, m.Name) || exclude.Test(desc.Plugin, desc.Name, m.Name) {
				continue
			}
			if m.DocString == "" {
				m.DocString = in.DocStrings[desc.Name+"/"+m.Name]
			}
			kept = append(kept, m)
		}
		if len(kept) == 0 {
			continue
		}

		doc := desc.DocString
		if doc == "" {
			doc = in.DocStrings[desc.Name]
		}
		spec.Services = append(spec.Services, ServiceInfo{
			Name:      desc.Name,
			Methods:   kept,
			DocString: doc,
		})
	}

	if len(spec.Services) == 0 {
		return spec.canonical(), nil
	}

	collectNamedTypes(spec, in.NamedTypes)
	in.Examples.apply(spec)
	return spec.canonical(), nil
}

// mergeDescriptions joins descriptions of the same owning type, which
// happens when one service is mounted more than once.
func mergeDescriptions(descs []ServiceDescription) []ServiceDescription {
	out := make([]ServiceDescription, 0, len(descs))
	index := make(map[string]int, len(descs))
	for _, d := range descs {
		if i, ok := index[d.Name]; ok {
			out[i].Methods = append(out[i].Methods, d.Methods...)
			if out[i].DocString == "" {
				out[i].DocString = d.DocString
			}
			continue
		}
		index[d.Name] = len(out)
		d.Methods = slices.Clone(d.Methods)
		out = append(out, d)
	}
	return out
}

// collectNamedTypes fills the enum, struct, and exception lists with the
// descriptors reachable from the surviving methods.
func collectNamedTypes(spec *ServiceSpecification, named NamedTypes) {
	enums := make(map[string]EnumInfo)
	structs := make(map[string]StructInfo)
	exceptions := make(map[string]ExceptionInfo)

	var visit func(TypeSignature)
	visit = func(sig TypeSignature) {
		if !sig.IsNamed() {
			return
		}
		name := sig.Name()
		if sig.Kind() == KindEnum {
			if e, ok := named.Enums[name]; ok {
				enums[name] = e
			}
			return
		}
		if _, seen := structs[name]; seen {
			return
		}
		s, ok := named.Structs[name]
		if !ok {
			return
		}
		structs[name] = s
		for _, f := range s.Fields {
			f.walkSignatures(visit)
		}
	}

	for _, svc := range spec.Services {
		for _, m := range svc.Methods {
			m.ReturnTypeSignature.walk(visit)
			for _, p := range m.Parameters {
				p.walkSignatures(visit)
			}
			for _, sig := range m.ExceptionTypeSignatures {
				ex, ok := named.Exceptions[sig.Name()]
				if !ok {
					continue
				}
				exceptions[sig.Name()] = ex
				for _, f := range ex.Fields {
					f.walkSignatures(visit)
				}
			}
		}
	}

	for _, k := range slices.Sorted(maps.Keys(enums)) {
		spec.Enums = append(spec.Enums, enums[k])
	}
	for _, k := range slices.Sorted(maps.Keys(structs)) {
		spec.Structs = append(spec.Structs, structs[k])
	}
	for _, k := range slices.Sorted(maps.Keys(exceptions)) {
		spec.Exceptions = append(spec.Exceptions, exceptions[k])
	}
}
