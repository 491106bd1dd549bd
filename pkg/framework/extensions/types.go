package extensions

import (
	"fmt"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
)

// Kind identifies the browser platform an entry targets.
type Kind string

const (
	KindChrome  Kind = "chrome"
	KindEdge    Kind = "edge"
	KindFirefox Kind = "firefox"
	KindOpera   Kind = "opera"
)

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known platforms.
func (k Kind) Valid() bool {
	switch k {
	case KindChrome, KindEdge, KindFirefox, KindOpera:
		return true
	}
	return false
}

// Entry is one tracked extension.
type Entry struct {
	ID            string `json:"id" yaml:"id"`
	Kind          Kind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	Date          int64  `json:"date,omitempty" yaml:"date,omitempty"` // download date, unix ms
	Size          int64  `json:"size,omitempty" yaml:"size,omitempty"` // bytes
	IsDownloading bool   `json:"isDownloading,omitempty" yaml:"isDownloading,omitempty"`
	Progress      int    `json:"progress,omitempty" yaml:"progress,omitempty"` // percent 0-100
	StoreURL      string `json:"storeUrl,omitempty" yaml:"storeUrl,omitempty"`
}

// Validate checks the caller-side invariants the reducer does not enforce.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: entry id cannot be empty", apperrors.ErrInvalid)
	}
	if e.Kind != "" && !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q (must be one of: chrome, edge, firefox, opera)", apperrors.ErrInvalid, e.Kind)
	}
	if e.Progress < 0 || e.Progress > 100 {
		return fmt.Errorf("%w: progress %d out of range [0,100]", apperrors.ErrInvalid, e.Progress)
	}
	return nil
}

// Patch is a partial Entry. Nil fields are absent and leave the
// corresponding field of the merged entry untouched.
type Patch struct {
	ID            *string `json:"id,omitempty"`
	Kind          *Kind   `json:"kind,omitempty"`
	Version       *string `json:"version,omitempty"`
	Date          *int64  `json:"date,omitempty"`
	Size          *int64  `json:"size,omitempty"`
	IsDownloading *bool   `json:"isDownloading,omitempty"`
	Progress      *int    `json:"progress,omitempty"`
	StoreURL      *string `json:"storeUrl,omitempty"`
}

// Validate checks the fields that are present.
func (p Patch) Validate() error {
	if p.ID != nil && *p.ID == "" {
		return fmt.Errorf("%w: patch id cannot be empty", apperrors.ErrInvalid)
	}
	if p.Kind != nil && !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalid, *p.Kind)
	}
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > 100) {
		return fmt.Errorf("%w: progress %d out of range [0,100]", apperrors.ErrInvalid, *p.Progress)
	}
	return nil
}

// ApplyTo returns the shallow merge of e and p.
func (p Patch) ApplyTo(e Entry) Entry {
	if p.ID != nil {
		e.ID = *p.ID
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Version != nil {
		e.Version = *p.Version
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Size != nil {
		e.Size = *p.Size
	}
	if p.IsDownloading != nil {
		e.IsDownloading = *p.IsDownloading
	}
	if p.Progress != nil {
		e.Progress = *p.Progress
	}
	if p.StoreURL != nil {
		e.StoreURL = *p.StoreURL
	}
	return e
}

// State maps entry ids to entries. Iteration order carries no meaning.
type State map[string]Entry

// Initial returns the empty state.
func Initial() State {
	return State{}
}

func (s State) clone() State {
	next := make(State, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	return next
}
