package visibility

import (
	"bytes"
	"encoding/json"
)

// Entry is the per-field outcome. A withheld entry never exposes the
// value; a disclosed entry may still carry a nil value when the owner
// left the field unset.
type Entry struct {
	Disclosed bool
	Value     *string
}

// Projection is the ordered field -> disclosed-or-withheld mapping
// returned to the caller for serialization. Enumeration order is the
// resolver's input order.
type Projection struct {
	order   []string
	entries map[string]Entry
}

func NewProjection() Projection {
	return Projection{entries: make(map[string]Entry)}
}

func (p *Projection) Disclose(id string, value *string) {
	p.put(id, Entry{Disclosed: true, Value: value})
}

func (p *Projection) Withhold(id string) {
	p.put(id, Entry{})
}

func (p *Projection) put(id string, e Entry) {
	if _, exists := p.entries[id]; !exists {
		p.order = append(p.order, id)
	}
	p.entries[id] = e
}

func (p Projection) Get(id string) (Entry, bool) {
	e, ok := p.entries[id]
	return e, ok
}

// Fields returns the identifiers in enumeration order.
func (p Projection) Fields() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p Projection) Len() int {
	return len(p.order)
}

// MarshalJSON writes an object whose keys follow enumeration order.
// Withheld fields serialize as null, uniformly; a disclosed field the
// owner never filled in serializes as the empty string so the caller
// can render "not set" instead of hiding the row.
func (p Projection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		entry := p.entries[id]
		switch {
		case !entry.Disclosed:
			buf.WriteString("null")
		case entry.Value == nil:
			buf.WriteString(`""`)
		default:
			valueBytes, err := json.Marshal(*entry.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(valueBytes)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
