package graph

import (
	"github.com/mitchellh/mapstructure"
)

// NodeData is the typed view of a node's free-form data object.
type NodeData struct {
	Value  any    `mapstructure:"value"`
	NewTab bool   `mapstructure:"newTab"`
	Label  string `mapstructure:"label"`
}

// Value returns the node's literal payload, or nil when it has none.
func (n *Node) Value() any {
	if n.Data == nil {
		return nil
	}
	return n.Data["value"]
}

// Decode maps the node's data object onto NodeData. Loosely typed inputs
// ("true", 1) are accepted for boolean fields; undecodable fields keep their
// zero value.
func (n *Node) Decode() NodeData {
	var d NodeData
	if n.Data == nil {
		return d
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &d,
	})
	if err != nil {
		return NodeData{Value: n.Data["value"]}
	}
	if err := dec.Decode(n.Data); err != nil {
		d.Value = n.Data["value"]
	}
	return d
}
