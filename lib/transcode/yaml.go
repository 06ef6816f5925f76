// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/binn/lib/binn"
	"gopkg.in/yaml.v3"
)

const (
	yamlNull      = "!!null"
	yamlBool      = "!!bool"
	yamlInt       = "!!int"
	yamlFloat     = "!!float"
	yamlString    = "!!str"
	yamlBinary    = "!!binary"
	yamlTimestamp = "!!timestamp"
)

func decodeYAML(data []byte, options Options) ([]binn.Value, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var values []binn.Value
	for {
		var document yaml.Node
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("yaml document %d: %w", len(values), err)
		}
		converter := yamlConverter{options: options, budget: nodeBudget}
		value, err := converter.value(&document, 0)
		if err != nil {
			return nil, fmt.Errorf("yaml document %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

type yamlConverter struct {
	options Options

	// budget counts down the nodes still allowed, so alias expansion
	// cannot blow up.
	budget int
}

func (c *yamlConverter) value(node *yaml.Node, depth int) (binn.Value, error) {
	if depth >= binn.DefaultMaxDepth {
		return binn.Value{}, errTooDeep
	}
	c.budget--
	if c.budget < 0 {
		return binn.Value{}, fmt.Errorf("document expands to more than %d nodes", nodeBudget)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return binn.Null(), nil
		}
		return c.value(node.Content[0], depth)
	case yaml.AliasNode:
		return c.value(node.Alias, depth+1)
	case yaml.ScalarNode:
		return c.scalar(node)
	case yaml.SequenceNode:
		list := make([]binn.Value, 0, len(node.Content))
		for index, element := range node.Content {
			value, err := c.value(element, depth+1)
			if err != nil {
				return binn.Value{}, fmt.Errorf("line %d: [%d]: %w", element.Line, index, err)
			}
			list = append(list, value)
		}
		return binn.List(list...), nil
	case yaml.MappingNode:
		if c.options.IntegerKeysAsMap && c.int32Keys(node) {
			return c.mapping(node, depth)
		}
		return c.object(node, depth)
	}
	return binn.Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

func (c *yamlConverter) scalar(node *yaml.Node) (binn.Value, error) {
	switch node.ShortTag() {
	case yamlNull:
		return binn.Null(), nil
	case yamlBool:
		var b bool
		if err := node.Decode(&b); err != nil {
			return binn.Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return binn.Bool(b), nil
	case yamlInt:
		var i int64
		if err := node.Decode(&i); err == nil {
			return integerValue(i, c.options), nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return unsignedValue(u, c.options), nil
		}
		if n, ok := new(big.Int).SetString(strings.ReplaceAll(node.Value, "_", ""), 0); ok {
			return binn.DecimalStr(n.String()), nil
		}
		return binn.Value{}, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)
	case yamlFloat:
		var f float64
		if err := node.Decode(&f); err != nil {
			return binn.Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return binn.Double(f), nil
	case yamlBinary:
		decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(node.Value), ""))
		if err != nil {
			return binn.Value{}, fmt.Errorf("line %d: binary: %w", node.Line, err)
		}
		return binn.Blob(decoded), nil
	case yamlTimestamp:
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return binn.Value{}, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return binn.DateTime(t.Format(time.RFC3339Nano)), nil
	}
	return binn.Text(node.Value), nil
}

// int32Keys reports whether every key of a mapping node is an integer
// scalar that fits in 32 bits.
func (c *yamlConverter) int32Keys(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return false
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode || key.ShortTag() != yamlInt {
			return false
		}
		var k int64
		if err := key.Decode(&k); err != nil || k < math.MinInt32 || k > math.MaxInt32 {
			return false
		}
	}
	return true
}

func (c *yamlConverter) mapping(node *yaml.Node, depth int) (binn.Value, error) {
	m := make(binn.Map, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key int32
		if err := node.Content[i].Decode(&key); err != nil {
			return binn.Value{}, fmt.Errorf("line %d: %w", node.Content[i].Line, err)
		}
		if _, exists := m[key]; exists {
			return binn.Value{}, fmt.Errorf("line %d: duplicate map key %d", node.Content[i].Line, key)
		}
		value, err := c.value(node.Content[i+1], depth+1)
		if err != nil {
			return binn.Value{}, fmt.Errorf("{%d}: %w", key, err)
		}
		m[key] = value
	}
	return binn.MapOf(m), nil
}

func (c *yamlConverter) object(node *yaml.Node, depth int) (binn.Value, error) {
	object := binn.NewObject()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		if keyNode.Kind != yaml.ScalarNode {
			return binn.Value{}, fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
		}
		key := keyNode.Value
		if object.Has(key) {
			return binn.Value{}, fmt.Errorf("line %d: duplicate mapping key %q", keyNode.Line, key)
		}
		value, err := c.value(node.Content[i+1], depth+1)
		if err != nil {
			return binn.Value{}, fmt.Errorf("[%q]: %w", key, err)
		}
		object.Set(key, value)
	}
	return binn.ObjectOf(object), nil
}

func encodeYAML(values []binn.Value, options Options) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	for index, value := range values {
		node, err := yamlNode(value, options)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
		if err := encoder.Encode(node); err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func yamlScalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(v binn.Value, options Options) (*yaml.Node, error) {
	var style yaml.Style
	if options.Compact {
		style = yaml.FlowStyle
	}
	switch v.Kind() {
	case binn.KindNull:
		return yamlScalar(yamlNull, "null"), nil
	case binn.KindBool:
		b, _ := v.AsBool()
		return yamlScalar(yamlBool, strconv.FormatBool(b)), nil
	case binn.KindU8, binn.KindU16, binn.KindU32, binn.KindU64:
		return yamlScalar(yamlInt, strconv.FormatUint(unsignedOf(v), 10)), nil
	case binn.KindI8, binn.KindI16, binn.KindI32, binn.KindI64:
		i, _ := v.AsInt64()
		return yamlScalar(yamlInt, strconv.FormatInt(i, 10)), nil
	case binn.KindFloat:
		f, _ := v.AsFloat()
		return yamlScalar(yamlFloat, yamlFloatLiteral(float64(f), 32)), nil
	case binn.KindDouble:
		f, _ := v.AsDouble()
		return yamlScalar(yamlFloat, yamlFloatLiteral(f, 64)), nil
	case binn.KindDateTime:
		s, _ := v.AsDateTime()
		if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return yamlScalar(yamlTimestamp, s), nil
		}
		return yamlScalar(yamlString, s), nil
	case binn.KindDecimalStr:
		s, _ := v.AsDecimalStr()
		if _, ok := new(big.Int).SetString(s, 10); ok {
			return yamlScalar(yamlInt, s), nil
		}
		return yamlScalar(yamlString, s), nil
	case binn.KindText, binn.KindDate, binn.KindTime:
		s, _ := v.AsString()
		return yamlScalar(yamlString, s), nil
	case binn.KindBlob:
		b, _ := v.AsBlob()
		return yamlScalar(yamlBinary, base64.StdEncoding.EncodeToString(b)), nil
	case binn.KindList:
		list, _ := v.AsList()
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: style}
		for _, element := range list {
			child, err := yamlNode(element, options)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case binn.KindMap:
		m, _ := v.AsMap()
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: style}
		for _, key := range m.Keys() {
			child, err := yamlNode(m[key], options)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, yamlScalar(yamlInt, strconv.FormatInt(int64(key), 10)), child)
		}
		return node, nil
	case binn.KindObject:
		object, _ := v.AsObject()
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: style}
		for key, element := range object.All() {
			child, err := yamlNode(element, options)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, yamlScalar(yamlString, key), child)
		}
		return node, nil
	}
	return nil, fmt.Errorf("cannot write %s as YAML", v.Kind())
}

// yamlFloatLiteral formats f so that it resolves back to !!float without
// an explicit tag.
func yamlFloatLiteral(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	literal := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(literal, ".e") {
		literal += ".0"
	}
	return literal
}
