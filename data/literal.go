// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danos/encoding/rfc7951"
	"gopkg.in/yaml.v3"
)

// Parse decodes an RFC7951 (JSON) literal such as [[1,2,3],[4,5,5]]
// into a new Value. Numbers without a fraction or exponent become
// integers, all other numbers become float64. Equal atoms in the
// literal are shared.
func Parse(msg []byte) (*Value, error) {
	p := &literalParser{
		strs: stringInternerNew(),
		vals: valueInternerNew(),
	}
	return p.parse(msg)
}

// MustParse is Parse but panics on error.
func MustParse(msg string) *Value {
	val, err := Parse([]byte(msg))
	if err != nil {
		panic(err)
	}
	return val
}

type literalParser struct {
	strs *stringInterner
	vals *valueInterner
}

func (p *literalParser) parse(msg []byte) (*Value, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 {
		return nil, errors.New("empty literal")
	}
	switch msg[0] {
	case '{':
		var members map[string]rfc7951.RawMessage
		if err := rfc7951.Unmarshal(msg, &members); err != nil {
			return nil, err
		}
		out := mappingNew()
		for k, raw := range members {
			v, err := p.parse(raw)
			if err != nil {
				return nil, err
			}
			out.Assoc(p.strs.Intern(k), v)
		}
		return ValueNew(out), nil
	case '[':
		var elems []rfc7951.RawMessage
		if err := rfc7951.Unmarshal(msg, &elems); err != nil {
			return nil, err
		}
		out := sequenceNew()
		for _, raw := range elems {
			v, err := p.parse(raw)
			if err != nil {
				return nil, err
			}
			out.Append(v)
		}
		return ValueNew(out), nil
	case '"':
		var str string
		if err := rfc7951.Unmarshal(msg, &str); err != nil {
			return nil, err
		}
		return p.vals.Intern(ValueNew(p.strs.Intern(str))), nil
	default:
		var scalar interface{}
		if err := rfc7951.Unmarshal(msg, &scalar); err != nil {
			return nil, err
		}
		atom, err := parseScalar(string(msg))
		if err != nil {
			return nil, err
		}
		return p.vals.Intern(ValueNew(atom)), nil
	}
}

func parseScalar(lit string) (interface{}, error) {
	switch lit {
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q", lit)
		}
		return f, nil
	}
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return u, nil
	}
	return nil, fmt.Errorf("invalid literal %q", lit)
}

// ParseYAML decodes a YAML document into a new Value. YAML aliases
// resolve to the same composite as their anchor, so a document can
// describe shared substructure.
func ParseYAML(doc []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	d := &yamlDecoder{
		nodes: make(map[*yaml.Node]*Value),
		strs:  stringInternerNew(),
	}
	return d.decode(&root)
}

type yamlDecoder struct {
	nodes map[*yaml.Node]*Value
	strs  *stringInterner
}

func (d *yamlDecoder) decode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case 0:
		// empty document
		return ValueNew(nil), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return ValueNew(nil), nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		return d.decode(n.Alias)
	}
	if val, seen := d.nodes[n]; seen {
		return val, nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		out := sequenceNew()
		val := ValueNew(out)
		d.nodes[n] = val
		for _, c := range n.Content {
			v, err := d.decode(c)
			if err != nil {
				return nil, err
			}
			out.Append(v)
		}
		return val, nil
	case yaml.MappingNode:
		out := mappingNew()
		val := ValueNew(out)
		d.nodes[n] = val
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, c := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode || k.ShortTag() == "!!merge" {
				return nil, fmt.Errorf(
					"line %d: mapping keys must be scalars", k.Line)
			}
			v, err := d.decode(c)
			if err != nil {
				return nil, err
			}
			out.Assoc(d.strs.Intern(k.Value), v)
		}
		return val, nil
	case yaml.ScalarNode:
		return d.scalar(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func (d *yamlDecoder) scalar(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return ValueNew(nil), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return ValueNew(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return ValueNew(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, err
		}
		return ValueNew(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return ValueNew(f), nil
	default:
		return ValueNew(d.strs.Intern(n.Value)), nil
	}
}

// MarshalRFC7951 returns the value encoded as an RFC7951 literal.
// Mapping members are written in key order. A composite that contains
// itself is written as [...] or {...} where it recurs.
func (val *Value) MarshalRFC7951() ([]byte, error) {
	var buf bytes.Buffer
	err := val.marshalRFC7951(&buf, visitedNew())
	return buf.Bytes(), err
}

// visited tracks the composites on the path currently being written.
type visited map[interface{}]struct{}

func visitedNew() visited {
	return make(visited)
}

func (val *Value) marshalRFC7951(buf *bytes.Buffer, seen visited) error {
	switch d := val.data.(type) {
	case *Sequence:
		return d.marshalRFC7951(buf, seen)
	case *Mapping:
		return d.marshalRFC7951(buf, seen)
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(d))
	case int64:
		buf.WriteString(strconv.FormatInt(d, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(d, 10))
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("cannot encode %v", d)
		}
		str := strconv.FormatFloat(d, 'g', -1, 64)
		if !strings.ContainsAny(str, ".eE") {
			// keep floats distinct from integers
			str += ".0"
		}
		buf.WriteString(str)
	case string:
		enc, err := rfc7951.Marshal(d)
		if err != nil {
			return err
		}
		buf.Write(enc)
	default:
		return fmt.Errorf("cannot encode %T", d)
	}
	return nil
}

func (seq *Sequence) marshalRFC7951(buf *bytes.Buffer, seen visited) error {
	if _, ok := seen[seq]; ok {
		buf.WriteString("[...]")
		return nil
	}
	seen[seq] = struct{}{}
	defer delete(seen, seq)

	var err error
	buf.WriteByte('[')
	seq.Range(func(i int, v *Value) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		err = v.marshalRFC7951(buf, seen)
		return err == nil
	})
	buf.WriteByte(']')
	return err
}

func (m *Mapping) marshalRFC7951(buf *bytes.Buffer, seen visited) error {
	if _, ok := seen[m]; ok {
		buf.WriteString("{...}")
		return nil
	}
	seen[m] = struct{}{}
	defer delete(seen, m)

	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := rfc7951.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := m.At(k).marshalRFC7951(buf, seen); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
