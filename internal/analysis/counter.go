package analysis

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Counter is a frequency table that remembers the order keys were first seen.
type Counter struct {
	keys   []string
	counts map[string]int
}

func NewCounter(seed ...string) *Counter {
	c := &Counter{counts: map[string]int{}}
	for _, k := range seed {
		c.ensure(k)
	}
	return c
}

func (c *Counter) ensure(key string) {
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
		c.counts[key] = 0
	}
}

func (c *Counter) Add(key string, n int) {
	c.ensure(key)
	c.counts[key] += n
}

func (c *Counter) Inc(key string) { c.Add(key, 1) }

func (c *Counter) Get(key string) int { return c.counts[key] }

func (c *Counter) Len() int { return len(c.keys) }

// Keys returns the keys in first-seen order.
func (c *Counter) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Counter) Total() int {
	total := 0
	for _, k := range c.keys {
		total += c.counts[k]
	}
	return total
}

// MarshalJSON writes an object whose members follow insertion order.
func (c *Counter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(jsonInt(c.counts[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML keeps insertion order in YAML output too.
func (c *Counter) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range c.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: jsonInt(c.counts[k])},
		)
	}
	return node, nil
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
