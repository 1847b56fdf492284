package value

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// Object is the member-by-member decomposition of an object or array
// literal. Keys keep insertion order; array keys are indexes.
type Object struct {
	Array   bool
	keys    []string
	members map[string]*Value
	nodes   map[string]*sitter.Node
}

// NewObject returns an empty decomposition.
func NewObject(array bool) *Object {
	return &Object{
		Array:   array,
		members: map[string]*Value{},
		nodes:   map[string]*sitter.Node{},
	}
}

// Set adds or replaces a member. node is the defining node (the pair, the
// shorthand property, the method or the array element).
func (o *Object) Set(key string, v *Value, node *sitter.Node) {
	if _, ok := o.members[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.members[key] = v
	o.nodes[key] = node
}

// Append adds an array element.
func (o *Object) Append(v *Value, node *sitter.Node) {
	o.Set(strconv.Itoa(len(o.keys)), v, node)
}

// Get returns the member stored under key.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.members[key]
	return v, ok
}

// Index returns the i-th array element.
func (o *Object) Index(i int) (*Value, bool) {
	return o.Get(strconv.Itoa(i))
}

// Node returns the defining node of a member.
func (o *Object) Node(key string) *sitter.Node {
	if o == nil {
		return nil
	}
	return o.nodes[key]
}

// Keys lists member keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len is the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Delete removes a member. Array keys are not renumbered.
func (o *Object) Delete(key string) {
	if _, ok := o.members[key]; !ok {
		return
	}
	delete(o.members, key)
	delete(o.nodes, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone copies the member table.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := NewObject(o.Array)
	for _, k := range o.keys {
		c.Set(k, o.members[k], o.nodes[k])
	}
	return c
}

// Slice returns array elements from index start on, renumbered from zero.
func (o *Object) Slice(start int) *Object {
	c := NewObject(true)
	for i := start; i < o.Len(); i++ {
		v, _ := o.Index(i)
		c.Append(v, o.Node(strconv.Itoa(i)))
	}
	return c
}

// Native builds the Go form of the decomposition: map[string]any for
// objects and []any for arrays.
func (o *Object) Native() any {
	if o.Array {
		out := make([]any, 0, len(o.keys))
		for _, k := range o.keys {
			out = append(out, native(o.members[k]))
		}
		return out
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = native(o.members[k])
	}
	return out
}

func native(v *Value) any {
	if v == nil {
		return nil
	}
	return v.Value
}
