// SPDX-License-Identifier: MIT

package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type vocabularyFile struct {
	Tracks []Track `yaml:"tracks"`
}

type seriesFile struct {
	Series []Series `yaml:"series"`
}

type watchlistFile struct {
	URLs []string `yaml:"urls"`
}

// LoadVocabulary reads the track vocabulary from path. An empty path or a
// missing file yields the built-in default vocabulary.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := readCatalogFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultVocabulary(), nil
		}
		return nil, err
	}

	var f vocabularyFile
	if err := decodeStrict(path, data, &f); err != nil {
		return nil, err
	}
	if len(f.Tracks) == 0 {
		return nil, fmt.Errorf("catalog: %s: no tracks defined", path)
	}
	return NewVocabulary(f.Tracks)
}

// LoadSeries reads the curated series list from path. An empty path or a
// missing file yields an empty list; the curated list is optional.
func LoadSeries(path string) ([]Series, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readCatalogFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var f seriesFile
	if err := decodeStrict(path, data, &f); err != nil {
		return nil, err
	}
	for i, s := range f.Series {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("catalog: %s: series %d has no name", path, i)
		}
		if len(s.Tracks) == 0 {
			return nil, fmt.Errorf("catalog: %s: series %q has no tracks", path, s.Name)
		}
	}
	return f.Series, nil
}

// LoadWatchlist reads the EDAS watchlist from path. An empty path or a
// missing file yields an empty list.
func LoadWatchlist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readCatalogFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var f watchlistFile
	if err := decodeStrict(path, data, &f); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(f.URLs))
	for _, u := range f.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func readCatalogFile(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("catalog: %s: unsupported extension %q (want .yaml or .yml)", path, ext)
	}
	return os.ReadFile(path)
}

// decodeStrict decodes exactly one YAML document and rejects unknown fields.
func decodeStrict(path string, data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("catalog: %s: multiple YAML documents are not supported", path)
	}
	return nil
}
