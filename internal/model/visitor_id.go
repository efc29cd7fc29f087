package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// VisitorID is a host-assigned visitor identifier. Hosts send either a string
// or a number; the original form is kept so it is written back unchanged.
type VisitorID struct {
	value   string
	numeric bool
}

func NewVisitorID(id string) VisitorID {
	return VisitorID{value: id}
}

func NumericVisitorID(id int64) VisitorID {
	return VisitorID{value: strconv.FormatInt(id, 10), numeric: true}
}

func (id VisitorID) String() string {
	return id.value
}

func (id VisitorID) IsNumeric() bool {
	return id.numeric
}

func (id VisitorID) IsZero() bool {
	return id.value == ""
}

func (id VisitorID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *VisitorID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = VisitorID{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewVisitorID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("visitor id must be a string or a number: %s", data)
	}
	*id = VisitorID{value: n.String(), numeric: true}
	return nil
}

func (id VisitorID) MarshalYAML() (any, error) {
	tag := "!!str"
	if id.numeric {
		tag = "!!int"
		if _, err := strconv.ParseInt(id.value, 10, 64); err != nil {
			tag = "!!float"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: id.value}, nil
}

func (id *VisitorID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: visitor id must be a string or a number", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*id = VisitorID{}
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return err
		}
		*id = NumericVisitorID(n)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("line %d: visitor id must be a finite number", node.Line)
		}
		*id = VisitorID{value: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
	case "!!str":
		*id = NewVisitorID(node.Value)
	default:
		return fmt.Errorf("line %d: visitor id must be a string or a number", node.Line)
	}
	return nil
}
