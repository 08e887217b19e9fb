package definitions

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/load"
)

// SchemaFile is the embedded file holding the document schema.
const SchemaFile = "schema.cue"

// Schema compiles the embedded schema on its own.
func Schema(ctx *cue.Context) (cue.Value, error) {
	data, err := FS.ReadFile(SchemaFile)
	if err != nil {
		return cue.Value{}, fmt.Errorf("read %s: %w", SchemaFile, err)
	}
	v := ctx.CompileBytes(data, cue.Filename(SchemaFile))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile %s: %w", SchemaFile, err)
	}
	return v, nil
}

// LoadDir builds the CUE package in dir and unifies it with the embedded
// schema, so an external document is held to the same constraints as the
// shipped one. It returns the number of .cue files found.
func LoadDir(ctx *cue.Context, dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return cue.Value{}, 0, err
	}
	if !info.IsDir() {
		return cue.Value{}, 0, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return cue.Value{}, 0, err
	}
	if len(files) == 0 {
		return cue.Value{}, 0, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, len(files), fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, len(files), fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, len(files), fmt.Errorf("building CUE value: %w", err)
	}

	schema, err := Schema(ctx)
	if err != nil {
		return cue.Value{}, len(files), err
	}
	v = schema.Unify(v)
	if err := v.Validate(); err != nil {
		return cue.Value{}, len(files), err
	}
	return v, len(files), nil
}
