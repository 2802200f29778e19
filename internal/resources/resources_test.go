package resources

import (
	"io/fs"
	"testing"

	"github.com/menukit/menustore/internal/codec"
	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/upgrade"
)

func TestBundledMenusDecode(t *testing.T) {
	t.Parallel()

	for _, store := range Stores {
		t.Run(store.Name, func(t *testing.T) {
			t.Parallel()

			data, err := fs.ReadFile(FS(), store.File)
			if err != nil {
				t.Fatalf("read %s: %v", store.File, err)
			}
			root, control, err := codec.Decode(data, codec.Options{Bundle: true, IDs: menu.NewCounter()})
			if err != nil {
				t.Fatalf("decode %s: %v", store.File, err)
			}
			if root.ChildAt(0).Len() == 0 {
				t.Error("no menus")
			}
			if _, err := upgrade.ParseVersion(control.Version); err != nil {
				t.Errorf("version %q: %v", control.Version, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	s, ok := Lookup("context")
	if !ok || s.File != "contextmenu.json" {
		t.Errorf("Lookup(context) = %+v, %v", s, ok)
	}
	if _, ok := Lookup("toolbar"); ok {
		t.Error("Lookup(toolbar) should fail")
	}
	if got := Names(); len(got) != 2 || got[0] != "main" {
		t.Errorf("Names() = %v", got)
	}
}
