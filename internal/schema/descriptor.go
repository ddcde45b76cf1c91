package schema

// Descriptor is the structural summary of a schema node published for tool
// discovery. Properties marshal with sorted keys, so assembling the same node
// twice yields byte-identical JSON.
type Descriptor struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Items       *Descriptor            `json:"items,omitempty"`
	Properties  map[string]*Descriptor `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
}

// Normalize resolves a node through its wrapper layers to the innermost
// semantic node, reporting whether a caller may omit the field.
//
// Optional and Defaulted must be handled together in one loop: stripping all
// of one kind and then all of the other leaves a wrapper behind for
// interleaved nestings like Optional(Defaulted(Optional(Boolean))), and the
// leftover wrapper then degrades to the generic fallback type downstream.
// A Defaulted wrapper alone also clears the required flag: a field the caller
// can omit in favor of a fallback is optional for calling purposes.
func Normalize(n *Node) (*Node, bool) {
	optional := false
	for {
		switch n.kind {
		case KindOptional:
			optional = true
			n = n.child
		case KindDefaulted:
			optional = true
			n = n.child
		default:
			return n, optional
		}
	}
}

// mapType infers the descriptor type tag for an already-normalized node.
// Object and Record map to a bare "object" here; property expansion is the
// assembler's job.
func mapType(n *Node) *Descriptor {
	switch n.kind {
	case KindString:
		return &Descriptor{Type: "string"}
	case KindNumber:
		return &Descriptor{Type: "number"}
	case KindBoolean:
		return &Descriptor{Type: "boolean"}
	case KindArray:
		elem, _ := Normalize(n.child)
		return &Descriptor{Type: "array", Items: mapType(elem)}
	case KindObject, KindRecord:
		return &Descriptor{Type: "object"}
	case KindUnion:
		return &Descriptor{Type: unionTag(n.alts)}
	default:
		// Unresolved wrapper. Reaching this arm means normalization was
		// skipped; report the generic fallback rather than guessing.
		return &Descriptor{Type: "string"}
	}
}

// unionTag returns the shared type tag of the alternatives, or "string" when
// they disagree. Heterogeneous unions are flattened lossily on purpose; see
// DESIGN.md.
func unionTag(alts []*Node) string {
	tag := ""
	for _, alt := range alts {
		inner, _ := Normalize(alt)
		t := mapType(inner).Type
		if tag == "" {
			tag = t
			continue
		}
		if t != tag {
			return "string"
		}
	}
	if tag == "" {
		return "string"
	}
	return tag
}

// Assemble builds the discovery descriptor for a tool's root schema node.
// Every registered tool's root is contractually an object; anything else is a
// bug in the registry, not caller input, and panics.
func Assemble(root *Node) *Descriptor {
	if root.kind != KindObject {
		panic("schema: Assemble requires an object root node")
	}
	return assembleObject(root)
}

func assembleObject(obj *Node) *Descriptor {
	d := &Descriptor{Type: "object", Properties: make(map[string]*Descriptor, len(obj.fields))}
	var required []string
	for _, f := range obj.fields {
		inner, optional := Normalize(f.Node)
		fd := mapType(inner)
		switch inner.kind {
		case KindObject:
			fd = assembleObject(inner)
		case KindArray:
			elem, _ := Normalize(inner.child)
			if elem.kind == KindObject {
				fd.Items = assembleObject(elem)
			}
		}
		if desc := fieldDescription(f.Node, inner); desc != "" {
			fd.Description = desc
		}
		d.Properties[f.Name] = fd
		if !optional {
			required = append(required, f.Name)
		}
	}
	// nil when no field is required, so the key is omitted rather than
	// published as an empty list.
	d.Required = required
	return d
}

// fieldDescription prefers a description on the outermost node (where schema
// literals usually attach it) and falls back to the unwrapped node.
func fieldDescription(outer, inner *Node) string {
	if outer.desc != "" {
		return outer.desc
	}
	return inner.desc
}
