package scenefile

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/marquee"
)

// enumNames maps the names accepted for enum-valued float properties.
var enumNames = map[marquee.PropID]map[string]float32{
	marquee.PropWrap: {
		"none": float32(marquee.WrapNone),
		"char": float32(marquee.WrapCharacter),
		"word": float32(marquee.WrapWord),
	},
	marquee.PropHAlign: {
		"left":   float32(marquee.HAlignLeft),
		"center": float32(marquee.HAlignCenter),
		"right":  float32(marquee.HAlignRight),
	},
	marquee.PropVAlign: {
		"top":    float32(marquee.VAlignTop),
		"center": float32(marquee.VAlignCenter),
		"bottom": float32(marquee.VAlignBottom),
	},
}

// decodeValue converts a YAML scalar or sequence into a value of the
// property's kind.
func decodeValue(id marquee.PropID, node *yaml.Node) (marquee.Value, error) {
	switch id.Kind() {
	case marquee.ValueFloat:
		if names, ok := enumNames[id]; ok && node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
			f, ok := names[node.Value]
			if !ok {
				return marquee.Value{}, fmt.Errorf("unknown %v %q", id, node.Value)
			}
			return marquee.Float(f), nil
		}
		var f float32
		if err := node.Decode(&f); err != nil {
			return marquee.Value{}, err
		}
		return marquee.Float(f), nil
	case marquee.ValueBool:
		var b bool
		if err := node.Decode(&b); err != nil {
			return marquee.Value{}, err
		}
		return marquee.Bool(b), nil
	case marquee.ValueString:
		var s string
		if err := node.Decode(&s); err != nil {
			return marquee.Value{}, err
		}
		return marquee.String(s), nil
	case marquee.ValueFloats:
		if id == marquee.PropColor && node.Kind == yaml.ScalarNode {
			c, err := marquee.ParseHexColor(node.Value)
			if err != nil {
				return marquee.Value{}, err
			}
			return marquee.Floats(c.Slice()...), nil
		}
		var fs []float32
		if err := node.Decode(&fs); err != nil {
			return marquee.Value{}, err
		}
		return marquee.Floats(fs...), nil
	case marquee.ValueObject:
		if id == marquee.PropIndices {
			var idx []uint16
			if err := node.Decode(&idx); err != nil {
				return marquee.Value{}, err
			}
			return marquee.Object(idx), nil
		}
		return marquee.Value{}, fmt.Errorf("%v cannot be set from a scene file", id)
	}
	return marquee.Value{}, fmt.Errorf("unsupported property %v", id)
}

func sortProps(props []propValue) {
	slices.SortFunc(props, func(a, b propValue) int { return int(a.id) - int(b.id) })
}
