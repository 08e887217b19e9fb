// Package definitions embeds the CUE document describing every unit, species,
// mixture, context and metric table shipped with the registry.
//
// Usage:
//
//	v, err := definitions.Value(cuecontext.New())
//	defs, err := compiler.CompileDefinitions(v)
package definitions

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"cuelang.org/go/cue"
)

//go:embed *.cue
var FS embed.FS

// Files returns the names of the embedded CUE files in sorted order.
func Files() []string {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		// embed.FS root always exists
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// Value compiles every embedded file and unifies them into one document,
// schema included.
func Value(ctx *cue.Context) (cue.Value, error) {
	var doc cue.Value
	for i, name := range Files() {
		data, err := FS.ReadFile(name)
		if err != nil {
			return cue.Value{}, fmt.Errorf("read %s: %w", name, err)
		}
		v := ctx.CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("compile %s: %w", name, err)
		}
		if i == 0 {
			doc = v
			continue
		}
		doc = doc.Unify(v)
	}
	if err := doc.Err(); err != nil {
		return cue.Value{}, err
	}
	return doc, nil
}
