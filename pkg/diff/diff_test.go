package diff

import (
	"strings"
	"testing"
)

func TestLinesIdenticalContent(t *testing.T) {
	e := NewEngine()
	lines := e.Lines("a\nb\nc\n", "a\nb\nc\n")
	if HasChanges(lines) {
		t.Error("identical content reported changes")
	}
}

func TestLinesDetectsEdit(t *testing.T) {
	e := NewEngine()
	lines := e.Lines("a\nb\nc\n", "a\nB\nc\n")

	var removed, added []string
	for _, line := range lines {
		switch line.Type {
		case LineRemoved:
			removed = append(removed, line.Content)
		case LineAdded:
			added = append(added, line.Content)
		}
	}
	if len(removed) != 1 || removed[0] != "b" {
		t.Errorf("removed = %v, want [b]", removed)
	}
	if len(added) != 1 || added[0] != "B" {
		t.Errorf("added = %v, want [B]", added)
	}
	if !HasChanges(lines) {
		t.Error("HasChanges = false for an edit")
	}
}

func TestRender(t *testing.T) {
	out := Render([]Line{
		{Type: LineContext, Content: "a"},
		{Type: LineRemoved, Content: "b"},
		{Type: LineAdded, Content: "B"},
	})
	want := "  a\n- b\n+ B\n"
	if out != want {
		t.Errorf("Render = %q, want %q", out, want)
	}
}

func TestComputeAddition(t *testing.T) {
	e := NewEngine()
	out := e.Compute("a\nc\n", "a\nb\nc\n")
	if !strings.Contains(out, "+ b") {
		t.Errorf("Compute = %q, want an added b line", out)
	}
	if strings.Contains(out, "- ") {
		t.Errorf("Compute = %q, pure addition should remove nothing", out)
	}
}
