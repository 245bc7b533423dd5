// SPDX-License-Identifier: MIT

// Package export writes the published dataset artifacts: the JSON file the
// preview page consumes and the ICS calendar derived from it.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/conftrack/conftrack/internal/conference"
)

// ReadJSON loads the published dataset from path. A missing file is an
// empty dataset; valid JSON of another shape is too, so a clobbered file
// cannot poison a refresh. Broken JSON is an error.
func ReadJSON(path string) ([]conference.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if json.Valid(data) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	entries := make([]conference.Entry, 0, len(raw))
	for _, m := range raw {
		if string(bytes.TrimSpace(m)) == "null" {
			continue
		}
		var e conference.Entry
		if err := json.Unmarshal(m, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteJSON atomically replaces path with the dataset: 2-space indent, no
// HTML escaping and a trailing newline, so diffs against hand-edited data
// stay clean. The parent directory is created when missing.
func WriteJSON(path string, entries []conference.Entry) error {
	if entries == nil {
		entries = []conference.Entry{}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create dataset directory %s: %w", dir, err)
		}
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending dataset file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	enc := json.NewEncoder(pending)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace dataset %s: %w", path, err)
	}
	return nil
}
