// SPDX-License-Identifier: MIT

// Package sources defines the upstream conference listings the refresh
// pipeline pulls from, the shared polite HTTP client they fetch with and
// the error taxonomy the pipeline classifies failures by.
package sources

import (
	"context"

	"github.com/conftrack/conftrack/internal/conference"
)

// Source is one upstream conference listing.
type Source interface {
	// Name identifies the source in logs, metrics and refresh status.
	Name() string
	// Fetch returns the entries currently listed upstream. Entries are
	// raw: the pipeline normalizes them before merging.
	Fetch(ctx context.Context) ([]conference.Entry, error)
}
