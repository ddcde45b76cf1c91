package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports every field that failed validation, one entry per
// violating path. Arguments are never silently coerced or partially accepted.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid arguments: " + strings.Join(e.Violations, "; ")
}

// Validate checks a caller's argument bag against a tool's root schema node.
// On success it returns a copy of the arguments with Defaulted values filled
// in for omitted fields. On failure it returns a ValidationError listing all
// violations. The root must be an object node, same contract as Assemble.
func Validate(root *Node, args map[string]any) (map[string]any, error) {
	if root.kind != KindObject {
		panic("schema: Validate requires an object root node")
	}
	if args == nil {
		args = map[string]any{}
	}
	var violations []string
	clean := checkObject(root, "", args, &violations)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return clean, nil
}

func checkObject(obj *Node, path string, m map[string]any, violations *[]string) map[string]any {
	clean := make(map[string]any, len(m))
	known := make(map[string]bool, len(obj.fields))
	for _, f := range obj.fields {
		known[f.Name] = true
		fp := joinPath(path, f.Name)
		inner, optional, defVal, hasDefault := unwrapField(f.Node)
		v, present := m[f.Name]
		if !present {
			if hasDefault {
				clean[f.Name] = defVal
			} else if !optional {
				*violations = append(*violations, fp+": missing required field")
			}
			continue
		}
		clean[f.Name] = checkValue(inner, fp, v, violations)
	}
	for _, key := range sortedKeys(m) {
		if !known[key] {
			*violations = append(*violations, joinPath(path, key)+": unknown field")
		}
	}
	return clean
}

func checkValue(n *Node, path string, v any, violations *[]string) any {
	n, _ = Normalize(n)
	switch n.kind {
	case KindString:
		if _, ok := v.(string); !ok {
			*violations = append(*violations, path+": expected string, got "+typeName(v))
		}
		return v
	case KindNumber:
		switch v.(type) {
		case float64, float32, int, int32, int64:
		default:
			*violations = append(*violations, path+": expected number, got "+typeName(v))
		}
		return v
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			*violations = append(*violations, path+": expected boolean, got "+typeName(v))
		}
		return v
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			*violations = append(*violations, path+": expected array, got "+typeName(v))
			return v
		}
		clean := make([]any, len(arr))
		for i, elem := range arr {
			clean[i] = checkValue(n.child, fmt.Sprintf("%s[%d]", path, i), elem, violations)
		}
		return clean
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			*violations = append(*violations, path+": expected object, got "+typeName(v))
			return v
		}
		return checkObject(n, path, m, violations)
	case KindRecord:
		m, ok := v.(map[string]any)
		if !ok {
			*violations = append(*violations, path+": expected object, got "+typeName(v))
			return v
		}
		clean := make(map[string]any, len(m))
		for _, key := range sortedKeys(m) {
			clean[key] = checkValue(n.child, joinPath(path, key), m[key], violations)
		}
		return clean
	case KindUnion:
		for _, alt := range n.alts {
			var scratch []string
			clean := checkValue(alt, path, v, &scratch)
			if len(scratch) == 0 {
				return clean
			}
		}
		*violations = append(*violations, path+": does not match any accepted alternative")
		return v
	default:
		// Normalize never returns a wrapper, so this is unreachable for a
		// well-formed tree.
		*violations = append(*violations, path+": unsupported schema node")
		return v
	}
}

// unwrapField resolves wrappers around an object field, capturing the
// outermost default value if one is present. The single-loop contract from
// Normalize applies here too.
func unwrapField(n *Node) (inner *Node, optional bool, defVal any, hasDefault bool) {
	for {
		switch n.kind {
		case KindOptional:
			optional = true
			n = n.child
		case KindDefaulted:
			optional = true
			if !hasDefault {
				defVal = n.defVal
				hasDefault = true
			}
			n = n.child
		default:
			return n, optional, defVal, hasDefault
		}
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
