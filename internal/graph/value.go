package graph

// ValueKind classifies a property value once, during sanitization, instead of
// re-type-checking it at every consumer.
type ValueKind int

const (
	// ValueUnsupported marks values the store cannot hold (maps, mixed lists,
	// nil). They are dropped before reaching the graph model.
	ValueUnsupported ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueList
)

// String returns the string representation of ValueKind
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	default:
		return "unsupported"
	}
}

// Classify resolves the tagged kind of a raw property value. Lists are only
// valid when every element shares one primitive kind.
func Classify(v any) ValueKind {
	switch v.(type) {
	case string:
		return ValueString
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ValueNumber
	case bool:
		return ValueBool
	}

	switch list := v.(type) {
	case []any:
		return classifyList(list)
	case []string, []float64, []int, []int64, []bool:
		return ValueList
	}

	return ValueUnsupported
}

// classifyList checks that a decoded JSON array is a homogeneous list of one
// primitive kind. Empty lists are kept; they are valid for every kind.
func classifyList(list []any) ValueKind {
	if len(list) == 0 {
		return ValueList
	}

	first := Classify(list[0])
	if first == ValueUnsupported || first == ValueList {
		return ValueUnsupported
	}

	for _, elem := range list[1:] {
		if Classify(elem) != first {
			return ValueUnsupported
		}
	}
	return ValueList
}

// SanitizeProperties copies a raw record, keeping only primitive values and
// homogeneous lists of primitives. Keys listed in exclude never survive; they
// are identity fields represented elsewhere on the model. Unsupported values
// are dropped, never stored, and never raise.
func SanitizeProperties(raw map[string]any, exclude ...string) map[string]any {
	if raw == nil {
		return nil
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		excluded[k] = struct{}{}
	}

	props := make(map[string]any, len(raw))
	for key, value := range raw {
		if _, skip := excluded[key]; skip {
			continue
		}
		if Classify(value) == ValueUnsupported {
			continue
		}
		props[key] = value
	}
	return props
}
