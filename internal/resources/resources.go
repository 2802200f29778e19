// Package resources embeds the factory menu definitions shipped with the
// application.
package resources

import (
	"embed"
	"io/fs"
	"slices"
)

//go:embed menus/*.json
var files embed.FS

// Store names a menu store and the bundled file that seeds it.
type Store struct {
	Name string
	File string
}

// Stores lists every menu store in load order.
var Stores = []Store{
	{Name: "main", File: "mainmenu.json"},
	{Name: "context", File: "contextmenu.json"},
}

// Lookup returns the store with the given name.
func Lookup(name string) (Store, bool) {
	i := slices.IndexFunc(Stores, func(s Store) bool { return s.Name == name })
	if i < 0 {
		return Store{}, false
	}
	return Stores[i], true
}

// Names returns the store names.
func Names() []string {
	out := make([]string, len(Stores))
	for i, s := range Stores {
		out[i] = s.Name
	}
	return out
}

// FS returns the bundled menu files, keyed by Store.File.
func FS() fs.FS {
	sub, err := fs.Sub(files, "menus")
	if err != nil {
		panic(err)
	}
	return sub
}
