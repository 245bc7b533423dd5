// SPDX-License-Identifier: MIT

// Package edas scrapes user-curated EDAS conference pages. EDAS has no
// public all-conference listing, so a watchlist names the pages worth
// tracking and each one is read heuristically: the heading becomes the
// name, the first dated header line yields congress date and location and
// the page text is searched for a submission deadline.
package edas

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/sources"
)

// SourceName is the provenance tag and log/metric label of this source.
const SourceName = "edas"

// maxHeaderLines bounds the date/location scan to the top of the page.
const maxHeaderLines = 60

var (
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	monthRe     = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\b`)
	lineSplitRe = regexp.MustCompile(`\s*\|\s*|\s*•\s*`)
	deadlineRe  = regexp.MustCompile(`(?i)(Paper\s+Submission\s+Deadline|Submission\s+Deadline)\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2})`)
)

// Config wires a Source.
type Config struct {
	Client *sources.HTTPClient
	URLs   []string
}

type Source struct {
	client *sources.HTTPClient
	urls   []string
}

func New(cfg Config) *Source {
	return &Source{client: cfg.Client, urls: cfg.URLs}
}

func (s *Source) Name() string { return SourceName }

// Fetch reads every watchlist page. A single broken page is logged and
// skipped; the rest of the watchlist still contributes.
func (s *Source) Fetch(ctx context.Context) ([]conference.Entry, error) {
	logger := log.WithComponentFromContext(ctx, SourceName)

	var out []conference.Entry
	for _, u := range s.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := s.fetchPage(ctx, u)
		if err != nil {
			logger.Warn().Str("url", u).Err(err).Msg("edas.page_failed")
			continue
		}
		out = append(out, entry)
	}

	logger.Debug().Int("entries", len(out)).Msg("edas.fetched")
	return out, nil
}

func (s *Source) fetchPage(ctx context.Context, pageURL string) (conference.Entry, error) {
	header := http.Header{}
	header.Set("User-Agent", sources.BrowserUserAgent)
	body, status, err := s.client.Get(ctx, SourceName, "fetch", pageURL, header)
	if err != nil {
		return conference.Entry{}, err
	}
	if status < 200 || status > 299 {
		return conference.Entry{}, sources.HTTPError(SourceName, "fetch", status, body)
	}
	doc, err := sources.ParseHTML(body)
	if err != nil {
		return conference.Entry{}, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: "parse", Err: err}
	}

	title := ""
	if headings := sources.FindAll(doc, "h1", "h2"); len(headings) > 0 {
		title = sources.Text(headings[0], " ")
	}
	if title == "" {
		if tn := sources.FindFirst(doc, "title"); tn != nil {
			title = sources.Text(tn, " ")
		}
	}
	title = conference.NormSpace(title)

	text := sources.Text(doc, "\n")
	location, start := headerDateLine(text)

	deadline := ""
	if m := deadlineRe.FindStringSubmatch(text); m != nil {
		deadline = m[2]
	}

	name := title
	if name == "" {
		name = conference.NormSpace(pageURL)
	}

	return conference.Entry{
		Name:               name,
		Sub:                []string{"Wireless/Communication"},
		Location:           conference.NormSpace(location),
		StartDate:          start,
		SubmissionDeadline: conference.CleanDisplayDate(deadline),
		Link:               pageURL,
		Source:             SourceName,
	}, nil
}

// headerDateLine scans the first visible lines for one like
// "Jun 2-5, 2026 | Glasgow, United Kingdom" and splits it into congress
// date and location. Only abbreviated month names qualify; that keeps the
// heuristic away from body prose.
func headerDateLine(text string) (location, start string) {
	scanned := 0
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		scanned++
		if scanned > maxHeaderLines {
			break
		}
		if !yearRe.MatchString(ln) || !monthRe.MatchString(ln) {
			continue
		}
		parts := lineSplitRe.Split(ln, -1)
		start = conference.CleanDisplayDate(strings.TrimSpace(parts[0]))
		if len(parts) > 1 {
			location = strings.TrimSpace(parts[1])
		}
		break
	}
	return location, start
}
