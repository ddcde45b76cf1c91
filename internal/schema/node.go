// Package schema defines the declarative parameter schemas used by the tool
// registry, and translates them into JSON-Schema-like descriptors for tool
// discovery. The same schema nodes also validate caller arguments at call time.
package schema

// Kind identifies the shape a Node describes. The set is closed; dispatch on
// Kind is expected to be exhaustive.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindOptional
	KindDefaulted
	KindArray
	KindObject
	KindUnion
	KindRecord
)

// Field is one named member of an object node. Declaration order is preserved.
type Field struct {
	Name string
	Node *Node
}

// Node describes the accepted shape of one parameter. Nodes are built once
// when the tool registry is constructed and are read-only afterwards; the same
// tree serves every discovery and validation request for its tool.
type Node struct {
	kind   Kind
	desc   string
	child  *Node   // Optional/Defaulted child, Array element, Record value
	defVal any     // Defaulted only
	fields []Field // Object only
	alts   []*Node // Union only
}

// Kind reports the node's shape tag.
func (n *Node) Kind() Kind { return n.kind }

// Describe attaches a human-readable description and returns the node so
// schema literals can be written inline.
func (n *Node) Describe(desc string) *Node {
	n.desc = desc
	return n
}

func String() *Node  { return &Node{kind: KindString} }
func Number() *Node  { return &Node{kind: KindNumber} }
func Boolean() *Node { return &Node{kind: KindBoolean} }

// Optional marks a field as omittable by the caller.
func Optional(child *Node) *Node { return &Node{kind: KindOptional, child: child} }

// Default supplies a fallback value for an omitted field. A defaulted field is
// reported as not-required: the caller may always leave it out.
func Default(child *Node, value any) *Node {
	return &Node{kind: KindDefaulted, child: child, defVal: value}
}

// Array describes a homogeneous list of elem.
func Array(elem *Node) *Node { return &Node{kind: KindArray, child: elem} }

// Object describes a fixed set of named fields in declaration order.
func Object(fields ...Field) *Node { return &Node{kind: KindObject, fields: fields} }

// Union accepts a value matching any one of the alternatives.
func Union(alts ...*Node) *Node { return &Node{kind: KindUnion, alts: alts} }

// Record describes a free-form map from string keys to values of value's shape.
func Record(value *Node) *Node { return &Node{kind: KindRecord, child: value} }
