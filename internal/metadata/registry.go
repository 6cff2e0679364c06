// Package metadata publishes JSON schemas of the JSONB metadata bags stored on documents,
// so clients can validate what they send before the server does.
package metadata

import (
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalPattern matches how decimal.Decimal marshals: a quoted plain number.
const decimalPattern = `^-?[0-9]+(\.[0-9]+)?$`

// EntityDef describes the metadata bags of one document type.
type EntityDef struct {
	Name   string             `json:"name"`
	Label  string             `json:"label,omitempty"`
	Header *jsonschema.Schema `json:"header"`
	Line   *jsonschema.Schema `json:"line,omitempty"`
}

// Registry stores entity definitions. Populate it at startup; it is read-only afterwards.
type Registry struct {
	reflector *jsonschema.Reflector
	entities  map[string]EntityDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		reflector: &jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
			Mapper:                    mapType,
		},
		entities: make(map[string]EntityDef),
	}
}

// Register reflects header and line (line may be nil) and stores them under name.
func (r *Registry) Register(name, label string, header, line any) {
	def := EntityDef{
		Name:   name,
		Label:  label,
		Header: r.reflector.Reflect(header),
	}
	if line != nil {
		def.Line = r.reflector.Reflect(line)
	}
	r.entities[name] = def
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (EntityDef, bool) {
	d, ok := r.entities[name]
	return d, ok
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mapType(t reflect.Type) *jsonschema.Schema {
	if t == decimalType {
		return &jsonschema.Schema{Type: "string", Pattern: decimalPattern}
	}
	return nil
}
