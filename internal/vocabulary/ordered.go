package vocabulary

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed map that remembers insertion order, including
// the key order of the JSON or YAML document it was decoded from.
type OrderedMap[V any] struct {
	values map[string]V
	keys   []string
}

// Branches maps a level-2 key to its level-3 entries.
type Branches = OrderedMap[[]string]

// Tree maps a level-1 key to its branches.
type Tree = OrderedMap[Branches]

// Set stores value under key, appending key if it is new.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in order.
func (m OrderedMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m OrderedMap[V]) Len() int {
	return len(m.keys)
}

// First returns the first key and its value.
func (m OrderedMap[V]) First() (string, V, bool) {
	if len(m.keys) == 0 {
		var zero V
		return "", zero, false
	}
	return m.keys[0], m.values[m.keys[0]], true
}

func (m *OrderedMap[V]) reset() {
	m.keys = nil
	m.values = make(map[string]V)
}

// MarshalJSON writes the map as an object in key order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping its key order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	m.reset()
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		m.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML writes the map as a mapping node in key order.
func (m OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var value yaml.Node
		if err := value.Encode(m.values[k]); err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node, keeping its key order.
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	m.reset()
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var value V
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		m.Set(key, value)
	}
	return nil
}
