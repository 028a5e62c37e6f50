package checksum

import "encoding/json"

// collectionDomain tags the aggregate hash so a collection identity can never
// collide with a payload identity.
const collectionDomain = "checksum-collection"

// Collection is an ordered sequence of child checksums representing a
// collection-valued field. It carries its own aggregate checksum identifying
// the collection as a whole; the aggregate is a pure function of the ordered
// children, so reordering children changes it.
type Collection struct {
	children  []Checksum
	aggregate Checksum
}

// NewCollection builds a collection over the given children. The slice is
// copied; the collection is immutable afterwards.
func NewCollection(children []Checksum) Collection {
	owned := make([]Checksum, len(children))
	copy(owned, children)

	raw := make([]byte, 0, len(owned)*Size)
	for _, child := range owned {
		raw = append(raw, child[:]...)
	}

	return Collection{
		children:  owned,
		aggregate: ForBytes(collectionDomain, raw),
	}
}

// Len returns the number of children.
func (c Collection) Len() int {
	return len(c.children)
}

// At returns the child checksum at index i.
func (c Collection) At(i int) Checksum {
	return c.children[i]
}

// Children returns a copy of the ordered child checksums.
func (c Collection) Children() []Checksum {
	out := make([]Checksum, len(c.children))
	copy(out, c.children)
	return out
}

// Aggregate returns the checksum identifying the collection as a whole.
func (c Collection) Aggregate() Checksum {
	return c.aggregate
}

// MarshalJSON encodes only the ordered children; the aggregate is derived
// state and is recomputed on decode.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c.children == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.children)
}

// UnmarshalJSON decodes the ordered children and recomputes the aggregate.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var children []Checksum
	if err := json.Unmarshal(data, &children); err != nil {
		return err
	}
	*c = NewCollection(children)
	return nil
}
