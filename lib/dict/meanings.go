package dict

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Sense is one category of meanings (e.g. "noun") with its definitions in dataset order.
// Definitions are kept as raw JSON because the datasets store plain strings as well as
// nested lists.
type Sense struct {
	Category    string
	Definitions []json.RawMessage
}

// Meanings is an ordered list of senses. It decodes from and encodes to a JSON object
// while keeping the key order of the source document.
type Meanings []Sense

// UnmarshalJSON decodes a JSON object of arrays. Any other shape is an error.
// A repeated category replaces the earlier one in place.
func (m *Meanings) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("meanings: expected object, got %v", tok)
	}

	senses := Meanings{}
	index := map[string]int{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("meanings: expected category name, got %v", tok)
		}

		var defs []json.RawMessage
		if err := dec.Decode(&defs); err != nil {
			return fmt.Errorf("meanings: category %q: %w", category, err)
		}
		if defs == nil {
			return fmt.Errorf("meanings: category %q is not a list", category)
		}

		if i, seen := index[category]; seen {
			senses[i].Definitions = defs
			continue
		}
		index[category] = len(senses)
		senses = append(senses, Sense{Category: category, Definitions: defs})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = senses
	return nil
}

// MarshalJSON encodes the senses as a compact JSON object in their current order
func (m Meanings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sense := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sense.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		defs := sense.Definitions
		if defs == nil {
			defs = []json.RawMessage{}
		}
		val, err := json.Marshal(defs)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Definitions returns the number of definitions over all categories
func (m Meanings) Definitions() int {
	n := 0
	for _, sense := range m {
		n += len(sense.Definitions)
	}
	return n
}

// Truncate returns a copy holding at most n definitions per category.
// The receiver is left untouched.
func (m Meanings) Truncate(n int) Meanings {
	out := make(Meanings, len(m))
	for i, sense := range m {
		defs := sense.Definitions
		if len(defs) > n {
			defs = defs[:n]
		}
		out[i] = Sense{
			Category:    sense.Category,
			Definitions: append([]json.RawMessage(nil), defs...),
		}
	}
	return out
}
