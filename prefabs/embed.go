package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// files holds the shipped config, box catalog and level scripts.
//
//go:embed *.yaml *.bbx scripts/*.tengo
var files embed.FS

// Dir is where on-disk overrides are looked up. A file present there wins
// over the embedded copy, which is what makes hot reload work.
var Dir = "prefabs"

// Load reads a top-level prefab such as "game.yaml" or "kitchen.bbx". A
// leading "prefabs/" is accepted.
func Load(name string) ([]byte, error) {
	return read(trimPrefix(name, "prefabs/"))
}

// LoadScript reads a level script by file name, with or without the
// "prefabs/scripts/" prefix.
func LoadScript(name string) ([]byte, error) {
	name = trimPrefix(name, "prefabs/", "scripts/")
	return read(path.Join("scripts", name))
}

func read(clean string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return files.ReadFile(clean)
}

// trimPrefix strips each prefix in turn from the slash form of name.
func trimPrefix(name string, prefixes ...string) string {
	s := filepath.ToSlash(name)
	for _, p := range prefixes {
		s = strings.TrimPrefix(s, p)
	}
	return s
}
