package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/canopy-ui/canopy/pkg/element"
)

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

func TestLoadBuildsElementTree(t *testing.T) {
	path := writeScene(t, `
type: rect
props:
  direction: column
  gap: 8
children:
  - type: text
    props: {content: hello}
  - type: rect
    key: badge
    props: {width: 50%, height: 24}
`)

	el, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if el.Type != "rect" {
		t.Errorf("root type = %v, want rect", el.Type)
	}
	if len(el.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(el.Children))
	}
	content, _ := el.Children[0].Props.String("content")
	if content != "hello" {
		t.Errorf("text content = %q, want hello", content)
	}
	if el.Children[1].Key != "badge" {
		t.Errorf("second child key = %v, want badge", el.Children[1].Key)
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	path := writeScene(t, `
type: rect
children:
  - type: sprite
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown primitive type")
	}
}

func TestLoadRejectsMissingType(t *testing.T) {
	path := writeScene(t, `
props: {width: 10}
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestLoadedSceneMountsCleanly(t *testing.T) {
	path := writeScene(t, `
type: rect
props: {width: 100, height: 50}
children:
  - type: text
    props: {content: hi}
`)
	el, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// The loaded tree must satisfy the same shape invariants as trees
	// built in code.
	if _, ok := el.Props.Get("key"); ok {
		t.Error("key prop should not leak for unkeyed nodes")
	}
	var walk func(*element.Element)
	walk = func(e *element.Element) {
		if _, ok := e.Type.(string); !ok {
			t.Errorf("scene node type %v is not a primitive tag", e.Type)
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(el)
}
