// SPDX-License-Identifier: MIT

// Package easychair scrapes the EasyChair call-for-papers listing. The
// listing covers every discipline, so rows are filtered down to the tracked
// interest areas before they become entries; the per-row detail page
// supplies the official website and the abstract deadline.
package easychair

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/sources"
)

// SourceName is the provenance tag and log/metric label of this source.
const SourceName = "easychair"

// userAgent announces the academic purpose alongside the browser token.
const userAgent = "Mozilla/5.0 (+academic use)"

// interestTerms filter the listing, most specific first: the first term
// found in a row's topics or name decides its track.
var interestTerms = []string{"security", "privacy", "network", "wireless", "communication", "signal", "5g", "6g"}

func trackForTerm(term string) string {
	switch term {
	case "security", "privacy":
		return "Security & Privacy"
	case "network":
		return "Network System"
	default:
		return "Wireless/Communication"
	}
}

var abstractDeadlineRe = regexp.MustCompile(`(?i)Abstract\s+deadline\s*[:\-]?\s*([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4}|\d{4}-\d{2}-\d{2})`)

// Config wires a Source.
type Config struct {
	Client *sources.HTTPClient
	URL    string
}

type Source struct {
	client *sources.HTTPClient
	url    string
}

func New(cfg Config) *Source {
	return &Source{client: cfg.Client, url: cfg.URL}
}

func (s *Source) Name() string { return SourceName }

// detailInfo is what a CFP detail page contributes to its row.
type detailInfo struct {
	website          string
	abstractDeadline string
}

func (s *Source) Fetch(ctx context.Context) ([]conference.Entry, error) {
	logger := log.WithComponentFromContext(ctx, SourceName)

	body, err := s.getPage(ctx, "fetch", s.url)
	if err != nil {
		return nil, err
	}
	doc, err := sources.ParseHTML(body)
	if err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: "parse", Err: err}
	}

	table := sources.FindFirst(doc, "table")
	if table == nil {
		logger.Warn().Str("url", s.url).Msg("easychair.no_table")
		return nil, nil
	}

	base, err := url.Parse(s.url)
	if err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: "parse", Err: err}
	}

	// Detail pages repeat across rows; fetch each at most once per refresh.
	detailCache := make(map[string]detailInfo)

	var out []conference.Entry
	for _, tr := range sources.FindAll(table, "tr") {
		// Listing rows live in the table body; the header row does not.
		if !hasAncestor(tr, "tbody") {
			continue
		}
		tds := sources.FindAll(tr, "td")
		if len(tds) < 6 {
			continue
		}

		acronym := sources.Text(tds[0], "")
		detailHref := ""
		if href, ok := sources.FindFirstLink(tds[0]); ok {
			detailHref = strings.TrimSpace(href)
		}
		name := sources.Text(tds[1], "")
		location := sources.Text(tds[2], "")
		subDeadlineISO := sources.Attr(tds[3], "data-key")
		subDeadlineText := sources.Text(tds[3], "")
		startISO := sources.Attr(tds[4], "data-key")
		startText := sources.Text(tds[4], "")

		var topics []string
		for _, span := range sources.FindAll(tds[5], "span") {
			if !sources.HasClass(span, "tag") {
				continue
			}
			if t := sources.Text(span, ""); t != "" {
				topics = append(topics, t)
			}
		}

		hay := strings.ToLower(strings.Join(topics, "; ") + " " + name)
		matched := ""
		for _, term := range interestTerms {
			if strings.Contains(hay, term) {
				matched = term
				break
			}
		}
		if matched == "" {
			continue
		}

		startFmt := conference.CleanDisplayDate(startText)
		if startFmt == "" && startISO != "" {
			startFmt = conference.CleanDisplayDate(startISO)
		}
		subFmt := conference.CleanDisplayDate(subDeadlineText)
		if subFmt == "" && subDeadlineISO != "" {
			subFmt = conference.CleanDisplayDate(subDeadlineISO)
		}

		var detail detailInfo
		if detailHref != "" {
			detail = s.detail(ctx, logger, base, detailHref, detailCache)
		}

		title := name
		if acronym != "" {
			title = acronym
		}

		out = append(out, conference.Entry{
			Name:               conference.NormSpace(title),
			Sub:                []string{trackForTerm(matched)},
			Location:           conference.NormSpace(location),
			StartDate:          startFmt,
			AbstractDeadline:   conference.CleanDisplayDate(detail.abstractDeadline),
			SubmissionDeadline: subFmt,
			Link:               conference.NormSpace(detail.website),
			Source:             SourceName,
		})
	}

	logger.Debug().Int("entries", len(out)).Msg("easychair.fetched")
	return out, nil
}

// detail resolves and fetches a CFP detail page. Failures degrade to an
// empty result so one broken detail page cannot sink the listing.
func (s *Source) detail(ctx context.Context, logger zerolog.Logger, base *url.URL, href string, cache map[string]detailInfo) detailInfo {
	ref, err := url.Parse(href)
	if err != nil {
		return detailInfo{}
	}
	detailURL := base.ResolveReference(ref).String()

	if info, ok := cache[detailURL]; ok {
		return info
	}

	body, err := s.getPage(ctx, "detail", detailURL)
	if err != nil {
		logger.Debug().Str("url", detailURL).Err(err).Msg("easychair.detail_failed")
		return detailInfo{}
	}
	doc, err := sources.ParseHTML(body)
	if err != nil {
		logger.Debug().Str("url", detailURL).Err(err).Msg("easychair.detail_failed")
		return detailInfo{}
	}

	info := extractDetail(doc)
	cache[detailURL] = info
	return info
}

// getPage fetches one page with the listing user agent.
func (s *Source) getPage(ctx context.Context, operation, rawURL string) ([]byte, error) {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	body, status, err := s.client.Get(ctx, SourceName, operation, rawURL, header)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, sources.HTTPError(SourceName, operation, status, body)
	}
	return body, nil
}

// extractDetail pulls the official website and abstract deadline out of a
// parsed detail page.
func extractDetail(doc *html.Node) detailInfo {
	var info detailInfo
	for _, a := range sources.FindAll(doc, "a") {
		href := strings.TrimSpace(sources.Attr(a, "href"))
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "http") && !strings.Contains(href, "easychair.org") {
			info.website = href
			break
		}
	}

	text := sources.Text(doc, "\n")
	if m := abstractDeadlineRe.FindStringSubmatch(text); m != nil {
		info.abstractDeadline = m[1]
	}
	return info
}

func hasAncestor(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}
