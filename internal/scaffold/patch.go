// pattern: Functional Core

package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"vmapps/internal/manifest"
)

// applyOverrides patches the copied form.yml and manifest.yml with the
// entry's settings. The patch sets specific keys in the parsed document and
// re-serializes it; the rest of the file is opaque payload and passes
// through untouched. The copy step itself is never parameterized.
func applyOverrides(dest string, m *manifest.Manifest, app manifest.App) error {
	if err := patchForm(filepath.Join(dest, "form.yml"), m, app); err != nil {
		return fmt.Errorf("patching form.yml: %w", err)
	}
	if err := patchManifest(filepath.Join(dest, "manifest.yml"), app); err != nil {
		return fmt.Errorf("patching manifest.yml: %w", err)
	}
	return nil
}

// patchForm sets the form title and the per-app attribute overrides
// (cores, memory, VM image) in the app's form.yml.
func patchForm(path string, m *manifest.Manifest, app manifest.App) error {
	return patchYAML(path, func(root *yaml.Node) error {
		setMapValue(root, "title", strScalar(app.Title))

		attrs := ensureMapValue(root, "attributes")
		setMapValue(attrs, "custom_num_cores", resourceNode(app.CPU))
		setMapValue(attrs, "custom_memory_per_node", resourceNode(app.Memory))

		if img := m.EffectiveVMImage(app); img != nil {
			setMapValue(attrs, "base_image", vmImageNode(img))
		}
		setMapValue(attrs, "use_custom_image_file", boolScalar(m.EffectiveCustomImageFile(app)))
		return nil
	})
}

// patchManifest sets the portal-facing name in the app's manifest.yml.
func patchManifest(path string, app manifest.App) error {
	return patchYAML(path, func(root *yaml.Node) error {
		setMapValue(root, "name", strScalar(app.Name))
		return nil
	})
}

// patchYAML parses a YAML file, applies fn to the root mapping, and writes
// it back with 2-space indentation.
func patchYAML(path string, fn func(root *yaml.Node) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("invalid YAML structure")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("YAML root is not a mapping")
	}

	if err := fn(root); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_ = enc.Close()

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// resourceNode builds the mapping for a numeric form attribute. Fixed
// attributes carry only a value; selectable ones also carry the range.
// Value is non-nil for any entry that passed manifest validation.
func resourceNode(r manifest.Resource) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if r.Value != nil {
		appendMapEntry(node, "value", intScalar(*r.Value))
	}
	if r.Select {
		appendMapEntry(node, "select", boolScalar(true))
		appendMapEntry(node, "min", intScalar(r.Min))
		appendMapEntry(node, "max", intScalar(r.Max))
	}
	return node
}

// vmImageNode builds the mapping for the base image attribute.
func vmImageNode(img *manifest.VMImage) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendMapEntry(node, "select", boolScalar(img.Select))
	if !img.Select {
		appendMapEntry(node, "value", strScalar(img.BaseImage))
	}
	return node
}

// findMapValue finds a value node for a given key in a mapping node.
func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setMapValue replaces the value for key, appending the pair if absent.
func setMapValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	appendMapEntry(mapping, key, value)
}

// ensureMapValue returns the mapping value for key, creating it if absent.
func ensureMapValue(mapping *yaml.Node, key string) *yaml.Node {
	if existing := findMapValue(mapping, key); existing != nil && existing.Kind == yaml.MappingNode {
		return existing
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	setMapValue(mapping, key, node)
	return node
}

func appendMapEntry(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		value,
	)
}

func strScalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intScalar(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(v)}
}

func boolScalar(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}
