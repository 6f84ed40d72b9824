package main

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/justicz/amqptable"
)

// Local YAML tags for variants that plain YAML scalars cannot express.
// Plain strings, booleans, integers, floats, timestamps and nulls use the
// core schema tags.
const (
	tagShortString = "!short"
	tagInt32       = "!int32"
	tagInt64       = "!int64"
	tagDecimal     = "!decimal"
	tagTimestamp   = "!timestamp"
)

// maxRFC3339Seconds is 9999-12-31T23:59:59Z, the last second RFC 3339 can
// represent. Later timestamps are printed as raw seconds.
const maxRFC3339Seconds = 253402300799

// parseTable reads a YAML or JSONC document whose top level is a mapping.
// JSONC is stripped of comments and trailing commas and then read as YAML,
// which JSON is a subset of.
func parseTable(data []byte, format string, maxDepth int) (*amqptable.Table, error) {
	switch format {
	case "yaml":
	case "jsonc":
		data = jsonc.ToJSON(data)
	default:
		return nil, fmt.Errorf("unknown input format %q (want yaml or jsonc)", format)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}

	// An empty document is an empty table
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return amqptable.NewTable(), nil
	}

	reader := nodeReader{maxDepth: maxDepth}
	return reader.table(&doc, 1)
}

// nodeReader converts yaml.Node trees to field values. The depth limit also
// stops alias cycles.
type nodeReader struct {
	maxDepth int
}

func (r nodeReader) table(n *yaml.Node, depth int) (*amqptable.Table, error) {
	if n.Kind == yaml.DocumentNode {
		n = n.Content[0]
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	if depth > r.maxDepth {
		return nil, fmt.Errorf("line %d: %w", n.Line, amqptable.ErrNestingTooDeep)
	}

	t := amqptable.NewTable()
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: table keys must be scalars", key.Line)
		}
		v, err := r.value(value, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		t.Set(key.Value, v)
	}
	return t, nil
}

// value converts n, which sits inside a container at depth
func (r nodeReader) value(n *yaml.Node, depth int) (amqptable.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return r.value(n.Alias, depth)
	case yaml.MappingNode:
		return r.table(n, depth+1)
	case yaml.SequenceNode:
		if depth+1 > r.maxDepth {
			return nil, fmt.Errorf("line %d: %w", n.Line, amqptable.ErrNestingTooDeep)
		}
		a := make(amqptable.Array, 0, len(n.Content))
		for i, elem := range n.Content {
			v, err := r.value(elem, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			a = append(a, v)
		}
		return a, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node", n.Line)
	}
}

func scalarValue(n *yaml.Node) (amqptable.Value, error) {
	switch tag := n.ShortTag(); tag {
	case "!!str":
		return amqptable.LongString(n.Value), nil
	case tagShortString:
		return amqptable.ShortString(n.Value), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return amqptable.Boolean(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return amqptable.Int(i), nil
	case tagInt32:
		i, err := strconv.ParseInt(n.Value, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return amqptable.Int32(i), nil
	case tagInt64:
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return amqptable.Int64(i), nil
	case "!!float", tagDecimal:
		d, err := amqptable.ParseDecimal(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return d, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		if t.Unix() < 0 {
			return nil, fmt.Errorf("line %d: timestamp before 1970: %w", n.Line, amqptable.ErrUnsupportedFieldType)
		}
		return amqptable.TimestampOf(t), nil
	case tagTimestamp:
		s, err := strconv.ParseUint(n.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return amqptable.Timestamp(s), nil
	case "!!null":
		return amqptable.Null{}, nil
	default:
		return nil, fmt.Errorf("line %d: tag %s: %w", n.Line, tag, amqptable.ErrUnsupportedFieldType)
	}
}

// marshalTableYAML renders t as a tagged YAML document that parseTable reads
// back to an equal table
func marshalTableYAML(t *amqptable.Table) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{tableNode(t)}}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("rendering YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("rendering YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func tableNode(t *amqptable.Table) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t.Entries() {
		n.Content = append(n.Content, scalarNode("!!str", e.Key), valueNode(e.Value))
	}
	return n
}

func valueNode(v amqptable.Value) *yaml.Node {
	switch v := v.(type) {
	case amqptable.LongString:
		return scalarNode("!!str", string(v))
	case amqptable.ShortString:
		return scalarNode(tagShortString, string(v))
	case amqptable.Boolean:
		return scalarNode("!!bool", strconv.FormatBool(bool(v)))
	case amqptable.Int32:
		return scalarNode("!!int", strconv.FormatInt(int64(v), 10))
	case amqptable.Int64:
		// Tagged so that small values come back as Int64
		return scalarNode(tagInt64, strconv.FormatInt(int64(v), 10))
	case amqptable.Decimal:
		return scalarNode(tagDecimal, v.String())
	case amqptable.Timestamp:
		if v <= maxRFC3339Seconds {
			return scalarNode("!!timestamp", v.Time().Format(time.RFC3339))
		}
		return scalarNode(tagTimestamp, strconv.FormatUint(uint64(v), 10))
	case *amqptable.Table:
		return tableNode(v)
	case amqptable.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range v {
			n.Content = append(n.Content, valueNode(elem))
		}
		return n
	default:
		return scalarNode("!!null", "null")
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
