package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const snippetLimit = 200

// Record is a schema-less manifest entry: an insertion-ordered mapping from
// field name to a JSON-compatible value. Numbers are held as json.Number so
// their textual encoding survives a read/write cycle, nested objects are held
// as *Record so their key order survives too.
type Record struct {
	keys []string
	vals map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]any)}
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Keys returns the field names in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value of a field and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Has reports whether a field is present.
func (r *Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Set stores a field value. A new field is appended after the existing ones,
// an existing field keeps its position.
func (r *Record) Set(key string, value any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = value
}

// Delete removes a field. Deleting an absent field is a no-op.
func (r *Record) Delete(key string) {
	if _, ok := r.vals[key]; !ok {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Clone returns an independent shallow copy. Top-level mutation of the clone
// never affects the source, which is all derived records need; nested values
// are shared.
func (r *Record) Clone() *Record {
	out := &Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]any, len(r.vals)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// String returns a string field. It fails with MissingFieldError when the
// field is absent and FieldTypeError when it holds another type.
func (r *Record) String(key string) (string, error) {
	v, ok := r.vals[key]
	if !ok {
		return "", NewMissingField(key, r)
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldTypeError{Field: key, Want: "string", Value: v}
	}
	return s, nil
}

// Float returns a numeric field as float64.
func (r *Record) Float(key string) (float64, error) {
	v, ok := r.vals[key]
	if !ok {
		return 0, NewMissingField(key, r)
	}
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errors.Wrapf(err, "field %q", key)
		}
		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, &FieldTypeError{Field: key, Want: "number", Value: v}
	}
}

// Int returns a numeric field as int64. A fractional value is a type error.
func (r *Record) Int(key string) (int64, error) {
	v, ok := r.vals[key]
	if !ok {
		return 0, NewMissingField(key, r)
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &FieldTypeError{Field: key, Want: "integer", Value: v}
		}
		return i, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, &FieldTypeError{Field: key, Want: "integer", Value: v}
	}
}

// Bool returns a boolean field.
func (r *Record) Bool(key string) (bool, error) {
	v, ok := r.vals[key]
	if !ok {
		return false, NewMissingField(key, r)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &FieldTypeError{Field: key, Want: "bool", Value: v}
	}
	return b, nil
}

// Snippet returns a compact JSON rendering truncated for error messages.
func (r *Record) Snippet() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return "<unserializable record>"
	}
	if len(b) > snippetLimit {
		return string(b[:snippetLimit]) + "..."
	}
	return string(b)
}

// MarshalJSON encodes the record as a compact JSON object with fields in
// insertion order and non-ASCII text left unescaped.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendValue(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := appendValue(&buf, r.vals[k]); err != nil {
			return nil, errors.Wrapf(err, "field %q", k)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping field order and numeric text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Errorf("expected object, got %v", tok)
	}

	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return errors.Errorf("trailing data after object: %v", tok)
	}
	*r = *rec
	return nil
}

// decodeObject consumes the members of an object whose opening brace has
// already been read.
func decodeObject(dec *json.Decoder) (*Record, error) {
	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.Errorf("expected object key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec.Set(key, val)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			var arr []any
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, errors.Errorf("unexpected delimiter %v", t)
		}
	default:
		// string, json.Number, bool or nil
		return tok, nil
	}
}

func appendValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case json.Number:
		buf.WriteString(t.String())
	case string:
		return appendString(buf, t)
	case *Record:
		b, err := t.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case float64:
		buf.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	default:
		// values set by stages that are none of the above
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
	}
	return nil
}

// appendString encodes a string without escaping non-ASCII or HTML characters.
func appendString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
