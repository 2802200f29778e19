package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/menukit/menustore/internal/menu"
)

const (
	guid1 = "3f2b4c1e-5a6d-4e7f-8a9b-0c1d2e3f4a5b"
	guid2 = "7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a"
	guid3 = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

func TestDecodeSimpleMenu(t *testing.T) {
	t.Parallel()

	doc := fmt.Sprintf(`[
		{"type":"menu","guid":%q,"action":"main_file","role":"file","children":[
			{"type":"command","guid":%q,"action":"cmd.new_tab"}
		]},
		{"type":"control","format":"1","version":"1.0.0.0"}
	]`, guid1, guid2)

	root, control, err := Decode([]byte(doc), Options{IDs: menu.NewCounter()})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	all := root.ChildAt(0)
	if all.Len() != 1 {
		t.Fatalf("menus = %d, want 1", all.Len())
	}
	m := all.ChildAt(0)
	if m.Kind != menu.KindMenu || m.Action != "main_file" || m.Role != "file" {
		t.Errorf("menu = %+v", m)
	}
	if m.Len() != 1 || m.ChildAt(0).Kind != menu.KindCommand || m.ChildAt(0).Action != "cmd.new_tab" {
		t.Errorf("menu children = %+v", m.Children())
	}
	if control.Version != "1.0.0.0" || control.Format != "1" {
		t.Errorf("control = %+v", control)
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	menuWith := func(children string) string {
		return fmt.Sprintf(`[{"type":"menu","guid":%q,"action":"m","role":"r","children":[%s]}]`, guid1, children)
	}

	tests := []struct {
		name string
		doc  string
	}{
		{"not an array", `{"type":"menu"}`},
		{"null document", `null`},
		{"null with whitespace", " null\n"},
		{"invalid json", `[`},
		{"untagged element", `[{"guid":"x"}]`},
		{"unknown top-level type", `[{"type":"bookmark"}]`},
		{"top-level command", fmt.Sprintf(`[{"type":"command","guid":%q,"action":"a"}]`, guid1)},
		{"menu without role", fmt.Sprintf(`[{"type":"menu","guid":%q,"action":"m"}]`, guid1)},
		{"menu without action", fmt.Sprintf(`[{"type":"menu","guid":%q,"role":"r"}]`, guid1)},
		{"menu bad guid", `[{"type":"menu","guid":"nope","action":"m","role":"r"}]`},
		{"duplicate sibling guids", menuWith(fmt.Sprintf(
			`{"type":"command","guid":%q,"action":"a"},{"type":"command","guid":%q,"action":"b"}`, guid2, guid2))},
		{"child reuses menu guid", menuWith(fmt.Sprintf(`{"type":"command","guid":%q,"action":"a"}`, guid1))},
		{"command without action", menuWith(fmt.Sprintf(`{"type":"command","guid":%q}`, guid2))},
		{"radio without group", menuWith(fmt.Sprintf(`{"type":"radio","guid":%q,"action":"a"}`, guid2))},
		{"container without mode", menuWith(fmt.Sprintf(`{"type":"container","guid":%q,"action":"a"}`, guid2))},
		{"container bad edge", menuWith(fmt.Sprintf(
			`{"type":"container","guid":%q,"action":"a","containermode":"inline","containeredge":"left"}`, guid2))},
		{"origin out of range", menuWith(fmt.Sprintf(`{"type":"command","guid":%q,"action":"a","origin":7}`, guid2))},
		{"nested menu", menuWith(fmt.Sprintf(`{"type":"menu","guid":%q,"action":"a","role":"r"}`, guid2))},
		{"children on command", menuWith(fmt.Sprintf(`{"type":"command","guid":%q,"action":"a","children":[]}`, guid2))},
		{"unknown child type", menuWith(fmt.Sprintf(`{"type":"widget","guid":%q,"action":"a"}`, guid2))},
		{"duplicate menu action", fmt.Sprintf(
			`[{"type":"menu","guid":%q,"action":"m","role":"r"},{"type":"menu","guid":%q,"action":"m","role":"r"}]`, guid1, guid2)},
		{"duplicate control", `[{"type":"control","version":"1.0.0.0"},{"type":"control","version":"1.0.0.0"}]`},
		{"wrong field type", menuWith(fmt.Sprintf(`{"type":"command","guid":%q,"action":42}`, guid2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, control, err := Decode([]byte(tt.doc), Options{})
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v does not match ErrParse", err)
			}
			if root != nil || control != nil {
				t.Error("rejected decode must not return a tree")
			}
		})
	}
}

func TestDecodeOriginAndBundle(t *testing.T) {
	t.Parallel()

	doc := fmt.Sprintf(`[{"type":"menu","guid":%q,"action":"m","role":"r","origin":1,"children":[
		{"type":"command","guid":%q,"action":"a","origin":2}
	]}]`, guid1, guid2)

	root, _, err := Decode([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	m := root.ResourceMenu("m")
	if m.Origin != menu.OriginModifiedBundled || m.ChildAt(0).Origin != menu.OriginUser {
		t.Errorf("origins = %v, %v", m.Origin, m.ChildAt(0).Origin)
	}

	root, _, err = Decode([]byte(doc), Options{Bundle: true})
	if err != nil {
		t.Fatalf("Decode(bundle) error: %v", err)
	}
	root.Walk(func(n *menu.Node) bool {
		if n.Origin != menu.OriginBundled {
			t.Errorf("bundle node %s has origin %v", n.GUID, n.Origin)
		}
		return true
	})
}

func TestDecodeShowShortcutInheritance(t *testing.T) {
	t.Parallel()

	doc := fmt.Sprintf(`[{"type":"menu","guid":%q,"action":"m","role":"r","showshortcut":true,"children":[
		{"type":"folder","guid":%q,"action":"f","showshortcut":false,"children":[
			{"type":"command","guid":%q,"action":"a"}
		]}
	]}]`, guid1, guid2, guid3)

	root, _, err := Decode([]byte(doc), Options{})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	folder := root.FindByGUID(guid2)
	leaf := root.FindByGUID(guid3)
	if folder.ShowShortcut == nil || *folder.ShowShortcut {
		t.Error("explicit false should override inherited true")
	}
	if leaf.ShowShortcut == nil || *leaf.ShowShortcut {
		t.Error("leaf should inherit false from its folder")
	}
}

func TestDecodeForceVersion(t *testing.T) {
	t.Parallel()

	_, control, err := Decode([]byte(`[{"type":"control","version":"1.0.0.0"}]`), Options{ForceVersion: "9.9.9.9"})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if control.Version != "9.9.9.9" {
		t.Errorf("Version = %q, want forced value", control.Version)
	}
}

func TestEncodeSeparatorHasNoAction(t *testing.T) {
	t.Parallel()

	root := menu.NewRoot()
	m := menu.NewNode(nil, guid1, menu.KindMenu)
	m.Action, m.Role = "m", "r"
	root.ChildAt(0).Add(m, 0)
	sep := menu.NewNode(nil, guid2, menu.KindSeparator)
	sep.Action = "leftover"
	m.Add(sep, 0)

	data, err := Encode(root, &menu.Control{Version: "1.0.0.0"})
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var elems []map[string]any
	if err := json.Unmarshal(data, &elems); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	children := elems[0]["children"].([]any)
	obj := children[0].(map[string]any)
	if obj["type"] != "separator" {
		t.Errorf("type = %v, want separator", obj["type"])
	}
	if _, ok := obj["action"]; ok {
		t.Error("separator must not carry an action")
	}
	if _, ok := obj["children"]; ok {
		t.Error("separator must not carry children")
	}
	if last := elems[len(elems)-1]; last["type"] != "control" {
		t.Errorf("last element = %v, want control", last)
	}
}

func TestEncodeIsSparse(t *testing.T) {
	t.Parallel()

	root := menu.NewRoot()
	m := menu.NewNode(nil, guid1, menu.KindMenu)
	m.Action, m.Role = "m", "r"
	root.ChildAt(0).Add(m, 0)
	cmd := menu.NewNode(nil, guid2, menu.KindCommand)
	cmd.Action = "a"
	cmd.Title = "ignored"
	m.Add(cmd, 0)
	empty := menu.NewNode(nil, guid3, menu.KindFolder)
	empty.Action = "f"
	empty.HasCustomTitle = true
	m.Add(empty, 1)

	data, err := Encode(root, nil)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	var elems []map[string]any
	if err := json.Unmarshal(data, &elems); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	children := elems[0]["children"].([]any)
	c0 := children[0].(map[string]any)
	for _, key := range []string{"title", "parameter", "origin", "showshortcut"} {
		if _, ok := c0[key]; ok {
			t.Errorf("command should not emit %q", key)
		}
	}
	c1 := children[1].(map[string]any)
	if title, ok := c1["title"]; !ok || title != "" {
		t.Errorf("custom empty title not preserved: %v", c1)
	}
	if kids, ok := c1["children"].([]any); !ok || len(kids) != 0 {
		t.Errorf("empty folder should emit empty children array: %v", c1)
	}
}

// buildRichTree exercises every kind and optional field.
func buildRichTree() (*menu.Node, *menu.Control) {
	ids := menu.NewCounter()
	root := menu.NewRoot()
	all := root.ChildAt(0)

	mainMenu := menu.NewNode(ids, menu.NewGUID(), menu.KindMenu)
	mainMenu.Action, mainMenu.Role = "mainmenu", "main"
	all.Add(mainMenu, 0)

	file := mainMenu.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindFolder), 0)
	file.Action, file.Title, file.HasCustomTitle = "MENU_FILE", "&File", true

	newTab := file.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindCommand), 0)
	newTab.Action, newTab.Parameter = "COMMAND_NEW_TAB", "background"
	newTab.Origin = menu.OriginUser

	file.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindSeparator), 1)

	check := file.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindCheckbox), 2)
	check.Action = "COMMAND_TOGGLE_STATUSBAR"
	check.Origin = menu.OriginModifiedBundled
	file.SetShowShortcut(menu.Bool(true))
	newTab.ShowShortcut = menu.Bool(false)

	radio := mainMenu.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindRadio), 1)
	radio.Action, radio.RadioGroup = "COMMAND_TABS_LEFT", "tabposition"

	container := mainMenu.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindContainer), 2)
	container.Action = "CONTAINER_RECENT"
	container.ContainerMode, container.ContainerEdge = menu.ContainerModeInline, menu.ContainerEdgeBelow

	ctx := menu.NewNode(ids, menu.NewGUID(), menu.KindMenu)
	ctx.Action, ctx.Role = "tabcontext", "context"
	all.Add(ctx, 1)
	ctx.Add(menu.NewNode(ids, menu.NewGUID(), menu.KindFolder), 0).Action = "MENU_EMPTY"

	return root, &menu.Control{Format: "1", Version: "2.3.0.1", Deleted: []string{menu.NewGUID()}}
}

type flatNode struct {
	Depth          int
	GUID           string
	Kind           menu.Kind
	Origin         menu.Origin
	Title          string
	HasCustomTitle bool
	Action         string
	Parameter      string
	Role           string
	RadioGroup     string
	ContainerMode  menu.ContainerMode
	ContainerEdge  menu.ContainerEdge
	ShowShortcut   string
}

func flatten(root *menu.Node) []flatNode {
	var out []flatNode
	var walk func(n *menu.Node, depth int)
	walk = func(n *menu.Node, depth int) {
		sc := "unset"
		if n.ShowShortcut != nil {
			sc = fmt.Sprint(*n.ShowShortcut)
		}
		out = append(out, flatNode{
			Depth: depth, GUID: n.GUID, Kind: n.Kind, Origin: n.Origin,
			Title: n.Title, HasCustomTitle: n.HasCustomTitle, Action: n.Action,
			Parameter: n.Parameter, Role: n.Role, RadioGroup: n.RadioGroup,
			ContainerMode: n.ContainerMode, ContainerEdge: n.ContainerEdge, ShowShortcut: sc,
		})
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return out
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	root, control := buildRichTree()
	data, err := Encode(root, control)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, gotControl, err := Decode(data, Options{IDs: menu.NewCounter()})
	if err != nil {
		t.Fatalf("Decode() error: %v\n%s", err, data)
	}

	want := flatten(root)
	have := flatten(got)
	if !slices.Equal(want, have) {
		t.Errorf("round trip mismatch:\nwant %+v\nhave %+v", want, have)
	}
	if gotControl.Version != control.Version || gotControl.Format != control.Format ||
		!slices.Equal(gotControl.Deleted, control.Deleted) {
		t.Errorf("control = %+v, want %+v", gotControl, control)
	}

	again, err := Encode(got, gotControl)
	if err != nil {
		t.Fatalf("second Encode() error: %v", err)
	}
	if string(again) != string(data) {
		t.Error("encoding is not stable across a round trip")
	}
}

func TestRoundTripGUIDsUnique(t *testing.T) {
	t.Parallel()

	root, control := buildRichTree()
	data, err := Encode(root, control)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, _, err := Decode(data, Options{})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	seen := map[string]bool{}
	for _, g := range got.GUIDs() {
		if seen[g] {
			t.Fatalf("guid %s appears twice", g)
		}
		seen[g] = true
	}
}

func TestReadVersion(t *testing.T) {
	t.Parallel()

	v, err := ReadVersion([]byte(fmt.Sprintf(
		`[{"type":"menu","guid":%q,"action":"m","role":"r"},{"type":"control","version":"3.1.0.7"}]`, guid1)))
	if err != nil || v != "3.1.0.7" {
		t.Errorf("ReadVersion() = %q, %v", v, err)
	}

	if _, err := ReadVersion([]byte(`[]`)); !errors.Is(err, ErrNoControl) {
		t.Errorf("ReadVersion(no control) error = %v, want ErrNoControl", err)
	}
	if _, err := ReadVersion([]byte(`nope`)); !errors.Is(err, ErrParse) {
		t.Errorf("ReadVersion(garbage) error = %v, want ErrParse", err)
	}
}

func TestParseErrorMessage(t *testing.T) {
	t.Parallel()

	_, _, err := Decode([]byte(`[{"type":"menu","guid":"bad","action":"m","role":"r"}]`), Options{})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T is not a *ParseError", err)
	}
	if pe.Path != "[0]" || !strings.Contains(pe.Error(), "invalid guid") {
		t.Errorf("ParseError = %q (path %q)", pe.Error(), pe.Path)
	}
}

func TestDecodeInvalidNodeIsTyped(t *testing.T) {
	t.Parallel()

	doc := fmt.Sprintf(`[{"type":"menu","guid":%q,"action":"m","role":"r","children":[{"type":"radio","guid":%q,"action":"a"}]}]`,
		guid1, guid2)
	_, _, err := Decode([]byte(doc), Options{})
	if !errors.Is(err, ErrParse) || !errors.Is(err, menu.ErrInvalidNode) {
		t.Fatalf("Decode() error = %v, want ErrParse wrapping menu.ErrInvalidNode", err)
	}
	var invalid *menu.InvalidNodeError
	if !errors.As(err, &invalid) || invalid.Kind != menu.KindRadio {
		t.Errorf("invalid node = %+v", invalid)
	}
}
