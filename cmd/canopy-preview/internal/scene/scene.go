// Package scene parses declarative YAML scene files into element trees.
//
// A scene file is a single node document:
//
//	type: rect
//	props:
//	  direction: column
//	  padding: 16
//	  gap: 8
//	children:
//	  - type: text
//	    props: {content: "hello"}
//	  - type: rect
//	    key: badge
//	    props: {width: "50%", height: 24px}
//
// Scenes are static: component functions cannot be expressed in YAML, so
// every node is a host primitive tag.
package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canopy-ui/canopy/pkg/element"
	"github.com/canopy-ui/canopy/pkg/host"
)

// Node is the YAML form of one element.
type Node struct {
	Type     string         `yaml:"type"`
	Key      any            `yaml:"key,omitempty"`
	Props    map[string]any `yaml:"props,omitempty"`
	Children []Node         `yaml:"children,omitempty"`
}

// Load reads a scene file and builds its element tree.
func Load(path string) (*element.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var root Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	return build(&root, "$")
}

func build(n *Node, path string) (*element.Element, error) {
	if n.Type == "" {
		return nil, fmt.Errorf("scene node %s is missing a type", path)
	}
	if _, ok := host.KindForTag(n.Type); !ok {
		return nil, fmt.Errorf("scene node %s has unknown primitive type %q", path, n.Type)
	}

	props := make(element.Props, len(n.Props)+1)
	for k, v := range n.Props {
		props[k] = v
	}
	if n.Key != nil {
		props["key"] = n.Key
	}

	children := make([]any, 0, len(n.Children))
	for i := range n.Children {
		child, err := build(&n.Children[i], fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return element.New(n.Type, props, children...), nil
}
