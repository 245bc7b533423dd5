// SPDX-License-Identifier: MIT

// Package ccfddl ingests the ccf-deadlines dataset through the GitHub
// contents API. Each category directory holds one YAML file per conference
// series; instances inside the configured year window are expanded into one
// entry per timeline round.
package ccfddl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/conference"
	"github.com/conftrack/conftrack/internal/log"
	"github.com/conftrack/conftrack/internal/sources"
)

// SourceName is the provenance tag and log/metric label of this source.
const SourceName = "ccfddl"

// trackByCategory maps ccf-deadlines category codes onto vocabulary tracks.
// Unknown codes pass through as-is and surface in validation.
var trackByCategory = map[string]string{
	"DS": "Computer Architecture/Parallel Programming/Storage Technology",
	"NW": "Network System",
	"SC": "Network and System Security",
	"SE": "Software Engineering/Operating System/Programming Language Design",
	"DB": "Database/Data Mining/Information Retrieval",
	"CT": "Computing Theory",
	"CG": "Graphics",
	"AI": "Artificial Intelligence",
	"HI": "Computer–Human Interaction",
	"MX": "Interdiscipline/Mixture/Emerging",
}

// Config wires a Source.
type Config struct {
	Client     *sources.HTTPClient
	BaseURL    string // contents API root, e.g. https://api.github.com/repos/ccfddl/ccf-deadlines/contents
	Token      string // optional bearer token, raises the API rate limit
	Categories []string
	YearFrom   int
	YearTo     int
	Vocabulary *catalog.Vocabulary
}

// Source fetches conference files per category and converts them to entries.
type Source struct {
	client     *sources.HTTPClient
	base       string
	token      string
	categories []string
	yearFrom   int
	yearTo     int
	vocab      *catalog.Vocabulary
}

func New(cfg Config) *Source {
	return &Source{
		client:     cfg.Client,
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		categories: cfg.Categories,
		yearFrom:   cfg.YearFrom,
		yearTo:     cfg.YearTo,
		vocab:      cfg.Vocabulary,
	}
}

func (s *Source) Name() string { return SourceName }

// contentItem is one directory entry of the GitHub contents API.
type contentItem struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// confFile is the YAML shape of one ccf-deadlines conference file. Fields
// the pipeline does not consume (description, dblp) are ignored on decode.
type confFile struct {
	Title string     `yaml:"title"`
	Sub   string     `yaml:"sub"`
	Rank  rank       `yaml:"rank"`
	Confs []instance `yaml:"confs"`
}

// rank carries the CCF class. Historic files wrote the rank as a bare
// scalar instead of a mapping; both forms decode.
type rank struct {
	CCF string `yaml:"ccf"`
}

func (r *rank) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.CCF = value.Value
		return nil
	}
	type plain rank
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*r = rank(p)
	return nil
}

type instance struct {
	Year     int     `yaml:"year"`
	ID       string  `yaml:"id"`
	Link     string  `yaml:"link"`
	Timezone string  `yaml:"timezone"`
	Date     string  `yaml:"date"`
	Place    string  `yaml:"place"`
	Timeline []round `yaml:"timeline"`
}

type round struct {
	Deadline         string `yaml:"deadline"`
	AbstractDeadline string `yaml:"abstract_deadline"`
	Comment          string `yaml:"comment"`
}

// Fetch downloads every category listing and conference file. A single
// broken file fails the whole source; the refresh pipeline isolates that
// from the other sources.
func (s *Source) Fetch(ctx context.Context) ([]conference.Entry, error) {
	logger := log.WithComponentFromContext(ctx, SourceName)

	var files []confFile
	for _, cat := range s.categories {
		items, err := s.listCategory(ctx, cat)
		if err != nil {
			return nil, err
		}
		if items == nil {
			logger.Debug().Str("category", cat).Msg("ccfddl.category_not_a_listing")
			continue
		}
		for _, it := range items {
			if !strings.HasSuffix(it.Name, ".yml") || it.DownloadURL == "" {
				continue
			}
			cf, err := s.downloadConf(ctx, it)
			if err != nil {
				return nil, err
			}
			if cf == nil {
				logger.Debug().Str("file", it.Name).Msg("ccfddl.file_not_a_conference")
				continue
			}
			files = append(files, *cf)
		}
	}

	entries := s.toEntries(files)
	logger.Debug().Int("files", len(files)).Int("entries", len(entries)).Msg("ccfddl.fetched")
	return entries, nil
}

// listCategory returns the directory items for one category, or nil when
// the API answered with something other than a listing.
func (s *Source) listCategory(ctx context.Context, cat string) ([]contentItem, error) {
	url := fmt.Sprintf("%s/conference/%s", s.base, cat)
	body, status, err := s.get(ctx, "list "+cat, url)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, nil
	}
	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: "list " + cat, Status: status, Err: err}
	}
	return items, nil
}

// downloadConf fetches and decodes one conference file. A nil result means
// the YAML did not hold a conference mapping.
func (s *Source) downloadConf(ctx context.Context, it contentItem) (*confFile, error) {
	op := "download " + it.Name
	body, _, err := s.get(ctx, op, it.DownloadURL)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: op, Err: err}
	}
	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.SequenceNode {
		if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}

	var cf confFile
	if err := node.Decode(&cf); err != nil {
		return nil, &sources.Error{Sentinel: sources.ErrBadResponse, Source: SourceName, Operation: op, Err: err}
	}
	return &cf, nil
}

// get performs an authenticated API request and classifies error statuses.
// A 403 carrying a rate-limit body maps to ErrRateLimited so operators see
// the token hint instead of a bare "forbidden".
func (s *Source) get(ctx context.Context, operation, url string) ([]byte, int, error) {
	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	body, status, err := s.client.Get(ctx, SourceName, operation, url, header)
	if err != nil {
		return nil, status, err
	}
	if status == http.StatusForbidden && strings.Contains(strings.ToLower(string(body)), "rate limit") {
		return nil, status, &sources.Error{
			Sentinel:  sources.ErrRateLimited,
			Source:    SourceName,
			Operation: operation,
			Status:    status,
			Err:       fmt.Errorf("GitHub API rate limit hit, set CONFTRACK_GITHUB_TOKEN"),
		}
	}
	if status < 200 || status > 299 {
		return nil, status, sources.HTTPError(SourceName, operation, status, body)
	}
	return body, status, nil
}

// toEntries expands conference files into entries inside the year window.
func (s *Source) toEntries(files []confFile) []conference.Entry {
	var out []conference.Entry
	for _, cf := range files {
		title := strings.TrimSpace(cf.Title)
		subCode := strings.TrimSpace(cf.Sub)
		label := catalog.Uncategorized
		if subCode != "" {
			label = subCode
			if mapped, ok := trackByCategory[subCode]; ok {
				label = mapped
			}
		}
		label = conference.CanonicalSubject(label, s.vocab)
		ccfRank := strings.TrimSpace(cf.Rank.CCF)

		for _, inst := range cf.Confs {
			if inst.Year < s.yearFrom || inst.Year > s.yearTo {
				continue
			}

			place := strings.TrimSpace(inst.Place)
			tz := strings.TrimSpace(inst.Timezone)
			link := strings.TrimSpace(inst.Link)
			start, end := conference.ParseDateRange(inst.Date, inst.Year)

			base := conference.Entry{
				Name:      strings.TrimSpace(fmt.Sprintf("%s %d", title, inst.Year)),
				Sub:       []string{label},
				Location:  place,
				StartDate: start,
				EndDate:   end,
				Link:      link,
				Source:    SourceName,
				SeriesID:  strings.TrimSpace(inst.ID),
				CCF:       ccfRank,
			}

			if len(inst.Timeline) == 0 {
				out = append(out, base)
				continue
			}

			for _, t := range inst.Timeline {
				e := base.Clone()
				if comment := strings.TrimSpace(t.Comment); comment != "" {
					e.Name = strings.TrimSpace(fmt.Sprintf("%s %d - %s", title, inst.Year, comment))
				}
				e.SubmissionDeadline = conference.DeadlineToISO(t.Deadline, tz)
				e.AbstractDeadline = conference.DeadlineToISO(t.AbstractDeadline, tz)
				out = append(out, e)
			}
		}
	}
	return out
}
