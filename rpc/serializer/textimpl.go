package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dictd/lib/dict"
	"github.com/ValentinKolb/dictd/rpc/common"
	"io"
	"unicode/utf16"
)

// NewTextSerializer creates the default serializer. Its output matches Python's json.dumps
// with default settings: ", " and ": " separators and all non-ASCII characters escaped.
func NewTextSerializer() IResultSerializer {
	return &textSerializerImpl{name: string(common.FormatText), itemSep: ", ", keySep: ": "}
}

// NewCompactSerializer creates a serializer producing the same document without whitespace
func NewCompactSerializer() IResultSerializer {
	return &textSerializerImpl{name: string(common.FormatCompact), itemSep: ",", keySep: ":"}
}

// textSerializerImpl implements the IResultSerializer interface. Categories and nested
// objects are written in dataset order, which encoding/json can not do for maps.
type textSerializerImpl struct {
	name    string
	itemSep string
	keySep  string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IResultSerializer)
// --------------------------------------------------------------------------

func (s *textSerializerImpl) Name() string {
	return s.name
}

func (s *textSerializerImpl) Serialize(res dict.Result) ([]byte, error) {
	if !res.Found {
		return []byte(common.NoEntry), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	writeString(&buf, res.Term)
	buf.WriteString(s.keySep)
	buf.WriteByte('{')

	for i, sense := range res.Meanings {
		if i > 0 {
			buf.WriteString(s.itemSep)
		}
		writeString(&buf, sense.Category)
		buf.WriteString(s.keySep)

		buf.WriteByte('[')
		for j, def := range sense.Definitions {
			if j > 0 {
				buf.WriteString(s.itemSep)
			}
			if err := s.writeRaw(&buf, def); err != nil {
				return nil, fmt.Errorf("definition %d of %s/%s: %w", j, res.Term, sense.Category, err)
			}
		}
		buf.WriteByte(']')
	}

	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeRaw re-encodes one raw JSON value with the serializer's separators
func (s *textSerializerImpl) writeRaw(buf *bytes.Buffer, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := s.writeValue(buf, dec); err != nil {
		return err
	}
	// a raw message holds exactly one value
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after value")
	}
	return nil
}

// writeValue copies the next value of the token stream into buf
func (s *textSerializerImpl) writeValue(buf *bytes.Buffer, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			buf.WriteByte('[')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteString(s.itemSep)
				}
				if err := s.writeValue(buf, dec); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		case '{':
			buf.WriteByte('{')
			for first := true; dec.More(); first = false {
				if !first {
					buf.WriteString(s.itemSep)
				}
				key, err := dec.Token()
				if err != nil {
					return err
				}
				name, ok := key.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", key)
				}
				writeString(buf, name)
				buf.WriteString(s.keySep)
				if err := s.writeValue(buf, dec); err != nil {
					return err
				}
			}
			buf.WriteByte('}')
		default:
			return fmt.Errorf("unexpected delimiter %v", v)
		}
		// consume the closing delimiter
		if _, err := dec.Token(); err != nil {
			return err
		}
	case string:
		writeString(buf, v)
	case json.Number:
		buf.WriteString(v.String())
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

// writeString writes a quoted string. Everything outside printable ASCII is escaped as
// \uXXXX (surrogate pairs above the BMP), the short escapes are used where they exist.
func writeString(buf *bytes.Buffer, str string) {
	buf.WriteByte('"')
	for _, r := range str {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteRune(r)
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(buf, `\u%04x\u%04x`, r1, r2)
			default:
				fmt.Fprintf(buf, `\u%04x`, r)
			}
		}
	}
	buf.WriteByte('"')
}
