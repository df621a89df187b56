package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

func noop(name string) tools.Tool {
	return tools.New(ai.ToolDefinition{
		Name:        name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}, func(context.Context, string, json.RawMessage) (any, error) {
		return nil, nil
	})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(noop("b"))
	reg.Register(noop("a"))

	if !reg.Has("a") || !reg.Has("b") {
		t.Fatal("registered tools missing")
	}
	if reg.Get("c") != nil {
		t.Fatal("unknown tool returned")
	}
	if reg.Len() != 2 {
		t.Fatalf("len = %d", reg.Len())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	reg := tools.NewRegistry()
	reg.Register(noop("a"))
	reg.Register(noop("a"))
}

func TestRegistry_DefinitionsSorted(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(noop("zeta"))
	reg.Register(noop("alpha"))
	reg.Register(noop("mid"))

	defs := reg.Definitions()
	want := []string{"alpha", "mid", "zeta"}
	for i, d := range defs {
		if d.Name != want[i] {
			t.Fatalf("defs[%d] = %q, want %q", i, d.Name, want[i])
		}
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *tools.Registry
	if reg.Get("x") != nil || reg.Len() != 0 || reg.Names() != nil {
		t.Fatal("nil registry not inert")
	}
}

func TestDeclarationTool_NotExecutable(t *testing.T) {
	d := tools.Declaration(ai.ToolDefinition{Name: "handoff"})
	if _, ok := d.(tools.Executable); ok {
		t.Fatal("declaration tool must not be executable")
	}
	if d.Definition().Name != "handoff" {
		t.Fatalf("name = %q", d.Definition().Name)
	}
}
