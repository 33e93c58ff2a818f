package graph

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/samber/lo"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// SDL is the bookshelf schema document.
//
//go:embed schema.graphql
var SDL string

// Binding supplies the functions behind one schema field. Subscribe is only
// meaningful on Subscription fields.
type Binding struct {
	Resolve   graphql.FieldResolveFn
	Subscribe graphql.FieldResolveFn
}

// FieldMap binds schema fields by "Type.field" key. Fields without a binding
// fall back to the default resolver, which reads struct fields by json tag.
type FieldMap map[string]Binding

var builtinScalars = map[string]*graphql.Scalar{
	"String":  graphql.String,
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

// BuildSchema parses sdl and binds fields to it. Every key of fields must
// name an object field declared in sdl, and every Subscription field needs
// a Subscribe function.
func BuildSchema(sdl string, fields FieldMap) (graphql.Schema, error) {
	doc, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("load schema: %w", err)
	}
	if err := checkBindings(doc, fields); err != nil {
		return graphql.Schema{}, err
	}

	b := &builder{
		doc:     doc,
		fields:  fields,
		objects: make(map[string]*graphql.Object),
	}
	if err := b.declare(); err != nil {
		return graphql.Schema{}, err
	}
	if err := b.populate(); err != nil {
		return graphql.Schema{}, err
	}

	cfg := graphql.SchemaConfig{
		Query:        b.root(doc.Query),
		Mutation:     b.root(doc.Mutation),
		Subscription: b.root(doc.Subscription),
	}
	for _, name := range b.order {
		cfg.Types = append(cfg.Types, b.objects[name])
	}
	schema, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return schema, nil
}

func checkBindings(doc *ast.Schema, fields FieldMap) error {
	for _, key := range lo.Keys(fields) {
		typeName, fieldName, ok := strings.Cut(key, ".")
		def := doc.Types[typeName]
		if !ok || def == nil || def.BuiltIn || def.Kind != ast.Object || def.Fields.ForName(fieldName) == nil {
			return fmt.Errorf("resolver %q does not match any schema field", key)
		}
	}
	if doc.Subscription != nil {
		for _, f := range userFields(doc.Subscription) {
			key := doc.Subscription.Name + "." + f.Name
			if fields[key].Subscribe == nil {
				return fmt.Errorf("subscription field %q has no subscribe function", key)
			}
		}
	}
	return nil
}

type builder struct {
	doc     *ast.Schema
	fields  FieldMap
	objects map[string]*graphql.Object
	order   []string
}

// declare creates every object type with an empty field set, so fields can
// reference each other in any order.
func (b *builder) declare() error {
	names := lo.Keys(b.doc.Types)
	slices.Sort(names)
	for _, name := range names {
		def := b.doc.Types[name]
		if def.BuiltIn {
			continue
		}
		if def.Kind != ast.Object {
			return fmt.Errorf("type %q: %s types are not supported", name, strings.ToLower(string(def.Kind)))
		}
		b.objects[name] = graphql.NewObject(graphql.ObjectConfig{
			Name:        name,
			Description: def.Description,
			Fields:      graphql.Fields{},
		})
		b.order = append(b.order, name)
	}
	return nil
}

func (b *builder) populate() error {
	for _, name := range b.order {
		obj := b.objects[name]
		for _, f := range userFields(b.doc.Types[name]) {
			field, err := b.field(name, f)
			if err != nil {
				return err
			}
			obj.AddFieldConfig(f.Name, field)
		}
	}
	return nil
}

func (b *builder) field(typeName string, f *ast.FieldDefinition) (*graphql.Field, error) {
	out, err := b.output(f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s.%s: %w", typeName, f.Name, err)
	}
	args := graphql.FieldConfigArgument{}
	for _, a := range f.Arguments {
		in, err := b.input(a.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s.%s(%s): %w", typeName, f.Name, a.Name, err)
		}
		arg := &graphql.ArgumentConfig{Type: in, Description: a.Description}
		if a.DefaultValue != nil {
			if arg.DefaultValue, err = a.DefaultValue.Value(nil); err != nil {
				return nil, fmt.Errorf("argument %s.%s(%s) default: %w", typeName, f.Name, a.Name, err)
			}
		}
		args[a.Name] = arg
	}

	binding := b.fields[typeName+"."+f.Name]
	field := &graphql.Field{
		Name:        f.Name,
		Type:        out,
		Args:        args,
		Description: f.Description,
		Resolve:     binding.Resolve,
		Subscribe:   binding.Subscribe,
	}
	if d := f.Directives.ForName("deprecated"); d != nil {
		field.DeprecationReason = "No longer supported"
		if reason := d.Arguments.ForName("reason"); reason != nil && reason.Value != nil {
			field.DeprecationReason = reason.Value.Raw
		}
	}
	return field, nil
}

func (b *builder) output(t *ast.Type) (graphql.Output, error) {
	var out graphql.Output
	if t.Elem != nil {
		elem, err := b.output(t.Elem)
		if err != nil {
			return nil, err
		}
		out = graphql.NewList(elem)
	} else if s, ok := builtinScalars[t.NamedType]; ok {
		out = s
	} else if obj, ok := b.objects[t.NamedType]; ok {
		out = obj
	} else {
		return nil, fmt.Errorf("unknown output type %q", t.NamedType)
	}
	if t.NonNull {
		out = graphql.NewNonNull(out)
	}
	return out, nil
}

// input resolves argument types. Only built-in scalars and lists of them are
// accepted.
func (b *builder) input(t *ast.Type) (graphql.Input, error) {
	var in graphql.Input
	if t.Elem != nil {
		elem, err := b.input(t.Elem)
		if err != nil {
			return nil, err
		}
		in = graphql.NewList(elem)
	} else if s, ok := builtinScalars[t.NamedType]; ok {
		in = s
	} else {
		return nil, fmt.Errorf("unsupported input type %q", t.NamedType)
	}
	if t.NonNull {
		in = graphql.NewNonNull(in)
	}
	return in, nil
}

func (b *builder) root(def *ast.Definition) *graphql.Object {
	if def == nil {
		return nil
	}
	return b.objects[def.Name]
}

// userFields skips the introspection fields gqlparser adds to the query type.
func userFields(def *ast.Definition) ast.FieldList {
	return lo.Filter(def.Fields, func(f *ast.FieldDefinition, _ int) bool {
		return !strings.HasPrefix(f.Name, "__")
	})
}
