package main

import (
	"fmt"
	"io"
	"os"

	"github.com/milk9111/portalchef/catalog"
	"github.com/milk9111/portalchef/prefabs"
	"golang.org/x/sync/errgroup"
)

// pack decodes every input, checks the merged templates and encodes them to
// w in argument order. It returns the number of boxes written.
func pack(inputs []string, w io.Writer) (int, error) {
	results := make([][]catalog.Entry, len(inputs))

	g := errgroup.Group{}
	for i, path := range inputs {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			spec, err := prefabs.DecodeBoxes(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = spec.Entries()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var entries []catalog.Entry
	for _, r := range results {
		entries = append(entries, r...)
	}
	if _, err := catalog.FromEntries(entries); err != nil {
		return 0, err
	}
	if err := catalog.Encode(w, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
