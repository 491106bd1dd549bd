package extensions

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

type entryFile struct {
	Extensions []Entry `yaml:"extensions"`
}

// LoadEntriesYAML parses a seed document of the form
//
//	extensions:
//	  - id: "0"
//	    kind: chrome
//	    storeUrl: https://chrome.google.com/webstore/detail/...
func LoadEntriesYAML(data []byte) ([]Entry, error) {
	var f entryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.WrapInvalidYAML(err, "failed to parse extensions document")
	}

	seen := make(map[string]struct{}, len(f.Extensions))
	for i, e := range f.Extensions {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("extension %d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate extension id %q", apperrors.ErrInvalid, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return f.Extensions, nil
}

// MarshalEntriesYAML renders state in the seed format, sorted by id.
func MarshalEntriesYAML(state State) ([]byte, error) {
	ids := make([]string, 0, len(state))
	for id := range state {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	f := entryFile{Extensions: make([]Entry, 0, len(ids))}
	for _, id := range ids {
		e := state[id]
		e.ID = id
		f.Extensions = append(f.Extensions, e)
	}

	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extensions: %w", err)
	}
	return out, nil
}
