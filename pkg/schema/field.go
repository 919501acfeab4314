package schema

// FieldType enumerates the primitive and composite types a field may carry.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
	FieldTypeArray   FieldType = "array"
	FieldTypeAny     FieldType = "any"
)

// Field describes one named input, output, or nested property of a node.
// Fields are recursively self-similar: an object field carries ordered
// nested Properties, an array field carries a single Items descriptor.
// The structure is a tree; a field cannot reference another field by id.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    *bool     `json:"required,omitempty"`
	Description string    `json:"description,omitempty"`

	// Present iff Type == object. An object field without properties is
	// valid but treated as opaque.
	Properties []Field `json:"properties,omitempty"`

	// Present iff Type == array. An array field without items is valid
	// but treated as opaque.
	Items *Field `json:"items,omitempty"`

	// String validators.
	Format    string `json:"format,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`

	// Numeric validators.
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// IsRequired reports whether the field is required. Unset defaults to true
// (inputs are required unless explicitly marked otherwise).
func (f *Field) IsRequired() bool {
	if f.Required == nil {
		return true
	}
	return *f.Required
}

// Depth returns the maximum nesting depth of the field tree. A leaf field
// has depth 1.
func (f *Field) Depth() int {
	max := 0
	for i := range f.Properties {
		if d := f.Properties[i].Depth(); d > max {
			max = d
		}
	}
	if f.Items != nil {
		if d := f.Items.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Clone returns a deep copy of the field tree.
func (f *Field) Clone() Field {
	out := *f
	out.Required = cloneBoolPtr(f.Required)
	out.MinLength = cloneIntPtr(f.MinLength)
	out.MaxLength = cloneIntPtr(f.MaxLength)
	out.Minimum = cloneFloatPtr(f.Minimum)
	out.Maximum = cloneFloatPtr(f.Maximum)
	out.Properties = CloneFields(f.Properties)
	if f.Items != nil {
		items := f.Items.Clone()
		out.Items = &items
	}
	return out
}

// CloneFields returns a deep copy of a field list, preserving order.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i := range fields {
		out[i] = fields[i].Clone()
	}
	return out
}

func cloneBoolPtr(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
