// SPDX-License-Identifier: MIT

// Package csalab scrapes the CSA lab conference tracking page. The page is
// one HTML table whose header row names the columns; column titles have
// shifted between page versions, so the mapping is tolerant.
package csalab

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/sources"
)

// SourceName is the provenance tag and log/metric label of this source.
const SourceName = "csalab"

// Config wires a Source.
type Config struct {
	Client *sources.HTTPClient
	URL    string
}

// Source scrapes the tracking table into entries. The table carries no
// subject column; entries get their track during normalization.
type Source struct {
	client *sources.HTTPClient
	url    string
}

func New(cfg Config) *Source {
	return &Source{client: cfg.Client, url: cfg.URL}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) Fetch(ctx context.Context) ([]conference.Entry, error) {
	logger := log.WithComponentFromContext(ctx, SourceName)

	header := http.Header{}
	header.Set("User-Agent", sources.BrowserUserAgent)
	body, status, err := s.client.Get(ctx, SourceName, "fetch", s.url, header)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, sources.HTTPError(SourceName, "fetch", status, body)
	}

	doc, err := sources.ParseHTML(body)
	if err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: "parse", Err: err}
	}

	table := sources.FindFirst(doc, "table")
	if table == nil {
		logger.Warn().Str("url", s.url).Msg("csalab.no_table")
		return nil, nil
	}

	rows := sources.FindAll(table, "tr")
	if len(rows) == 0 {
		return nil, nil
	}

	headers := headerNames(rows[0])

	var out []conference.Entry
	for _, tr := range rows[1:] {
		cells := sources.FindAll(tr, "td", "th")
		if len(cells) == 0 {
			continue
		}

		row := make(map[string]string, len(headers))
		for i, col := range headers {
			if i >= len(cells) {
				row[col] = ""
				continue
			}
			cell := cells[i]
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(col)), "website") {
				if href, ok := sources.FindFirstLink(cell); ok {
					row[col] = strings.TrimSpace(href)
				} else {
					row[col] = sources.Text(cell, " ")
				}
			} else {
				row[col] = sources.Text(cell, " ")
			}
		}

		name := firstNonEmpty(row["Conf. Name"], row["Conference"], row["Conf"], row["Name"])
		if strings.TrimSpace(name) == "" {
			continue
		}
		link := firstNonEmpty(row["Website"], row["Website Link"], row["Website URL"])

		out = append(out, conference.Entry{
			Name:               conference.NormSpace(name),
			Location:           conference.NormSpace(row["Location"]),
			StartDate:          conference.CleanDisplayDate(row["Start Date"]),
			AbstractDeadline:   conference.CleanDisplayDate(row["Abstract Deadline"]),
			SubmissionDeadline: conference.CleanDisplayDate(firstNonEmpty(row["Submission Deadline"], row["Deadline"])),
			Link:               conference.NormSpace(link),
			Source:             SourceName,
		})
	}

	logger.Debug().Int("entries", len(out)).Msg("csalab.fetched")
	return out, nil
}

// headerNames reads the column titles from the header row; unnamed columns
// get positional names.
func headerNames(tr *html.Node) []string {
	cells := sources.FindAll(tr, "th", "td")
	out := make([]string, len(cells))
	for i, c := range cells {
		h := sources.Text(c, " ")
		if h == "" {
			h = fmt.Sprintf("col_%d", i)
		}
		out[i] = h
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
