package langfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes m as a JSON object indented by two spaces. Keys keep
// insertion order unless sorted is set. HTML characters are not escaped.
func Encode(w io.Writer, m *Mapping, sorted bool) error {
	data, err := Marshal(m, sorted)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal returns the JSON encoding used by Encode.
func Marshal(m *Mapping, sorted bool) ([]byte, error) {
	keys := m.Keys()
	if sorted {
		keys = m.SortedKeys()
	}
	if len(keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range keys {
		value, _ := m.Get(key)
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		v, err := marshalString(value)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode reads a JSON object of string values, keeping key order.
func Decode(r io.Reader) (*Mapping, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	m := NewMapping()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read object end: %w", err)
	}
	return m, nil
}
