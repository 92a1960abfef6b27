// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-YAML schema so that Pandoc and reference
// managers can read the output.
type CSLItem struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Author    []CSLName `yaml:"author,omitempty"`
	URL       string    `yaml:"URL,omitempty"`
	DOI       string    `yaml:"DOI,omitempty"`
	Number    string    `yaml:"number,omitempty"`
	Publisher string    `yaml:"publisher,omitempty"`
	Accessed  *CSLDate  `yaml:"accessed,omitempty"`
}

// CSLName is an institutional or literal author name.
type CSLName struct {
	Literal string `yaml:"literal"`
}

// CSLDate represents a date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL writes the summary's sources as a CSL-YAML list. Item ids are
// "ref-<n>" where n is the in-text marker number.
func CSL(w io.Writer, s *types.ResearchSummary) error {
	items := make([]CSLItem, 0, len(s.Citations))
	for _, c := range exportable(s) {
		items = append(items, toCSLItem(c, s))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(c numbered, s *types.ResearchSummary) CSLItem {
	info := describe(c.Citation)
	item := CSLItem{
		ID:    fmt.Sprintf("ref-%d", c.N),
		Type:  info.Kind,
		Title: info.Title,
		URL:   c.URL,
		DOI:   info.DOI,
	}
	if info.Arxiv != "" {
		item.Number = "arXiv:" + info.Arxiv
		item.Publisher = "arXiv"
	}
	if info.Author != "" {
		item.Author = []CSLName{{Literal: info.Author}}
	}
	if !s.CreatedAt.IsZero() {
		t := s.CreatedAt.UTC()
		item.Accessed = &CSLDate{DateParts: [][]int{{t.Year(), int(t.Month()), t.Day()}}}
	}
	return item
}
