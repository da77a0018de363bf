package kind

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldType is the declared type of a schema field.
type FieldType int

const (
	Text FieldType = iota
	Number
	DateTime
)

func (t FieldType) String() string {
	switch t {
	case Number:
		return "number"
	case DateTime:
		return "date-time"
	default:
		return "string"
	}
}

// Field is one column of a kind's schema.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Schema describes the columns and submodel of a data kind.
type Schema struct {
	Name        string  `json:"name"`
	IDShort     string  `json:"id_short"`
	SemanticID  string  `json:"semantic_id"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Columns returns the field names in declaration order.
func (s Schema) Columns() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Matches reports whether columns is exactly the schema's column set,
// ignoring order, case and surrounding whitespace.
func (s Schema) Matches(columns []string) bool {
	if len(columns) != len(s.Fields) {
		return false
	}
	want := normalizeColumns(s.Columns())
	got := normalizeColumns(columns)
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// Validate checks columns against the schema and returns a ValidationError
// naming missing and unexpected columns.
func (s Schema) Validate(columns []string) error {
	if s.Matches(columns) {
		return nil
	}
	have := map[string]bool{}
	for _, c := range columns {
		have[strings.ToLower(strings.TrimSpace(c))] = true
	}
	want := map[string]bool{}
	var missing, extra []string
	for _, c := range s.Columns() {
		want[c] = true
		if !have[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range columns {
		if n := strings.ToLower(strings.TrimSpace(c)); !want[n] {
			extra = append(extra, n)
		}
	}
	return Invalidf("columns do not match %s: missing %v, unexpected %v", s.Name, missing, extra)
}

func normalizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	sort.Strings(out)
	return out
}

// ResolveField coerces a raw value according to the field type. Blank
// numbers and date-times resolve to nil; date-times get a Z suffix when they
// carry none; text is trimmed.
func ResolveField(f Field, raw string) (any, error) {
	v := strings.TrimSpace(raw)
	switch f.Type {
	case Number:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, Invalidf("field %s: %q is not a number", f.Name, raw)
		}
		return n, nil
	case DateTime:
		if v == "" {
			return nil, nil
		}
		if !strings.HasSuffix(strings.ToUpper(v), "Z") {
			v += "Z"
		}
		return v, nil
	default:
		return v, nil
	}
}

// Coercer turns raw row fields into typed values.
type Coercer func(fields map[string]string) (map[string]any, error)

// Compile resolves the schema into one coercion func per field.
func (s Schema) Compile() (Coercer, error) {
	type step struct {
		name     string
		required bool
		resolve  func(string) (any, error)
	}
	steps := make([]step, 0, len(s.Fields))
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s has a field without name", s.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("schema %s declares field %s twice", s.Name, f.Name)
		}
		seen[f.Name] = true
		field := f
		steps = append(steps, step{
			name:     f.Name,
			required: f.Required,
			resolve:  func(raw string) (any, error) { return ResolveField(field, raw) },
		})
	}

	return func(fields map[string]string) (map[string]any, error) {
		out := make(map[string]any, len(steps))
		for _, st := range steps {
			raw := fields[st.name]
			if st.required && strings.TrimSpace(raw) == "" {
				return nil, Invalidf("field %s is required", st.name)
			}
			v, err := st.resolve(raw)
			if err != nil {
				return nil, err
			}
			out[st.name] = v
		}
		return out, nil
	}, nil
}

// TextValue returns a coerced text value, or "" when absent or not text.
func TextValue(values map[string]any, name string) string {
	s, _ := values[name].(string)
	return s
}
