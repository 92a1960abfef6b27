// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders a research summary for use outside the app: a
// Markdown document with a numbered reference list, or the citation list
// alone as CSL-YAML or BibTeX for reference managers.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Format names an export rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSL      Format = "csl"
	FormatBibTeX   Format = "bibtex"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMarkdown, FormatCSL, FormatBibTeX, FormatJSON}

// ParseFormat accepts a format name and a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "csl", "csl-yaml", "yaml":
		return FormatCSL, nil
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSL:
		return "application/yaml"
	case FormatBibTeX:
		return "application/x-bibtex"
	case FormatJSON:
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSL:
		return "yaml"
	case FormatBibTeX:
		return "bib"
	case FormatJSON:
		return "json"
	default:
		return "md"
	}
}

// Write renders s in format f to w.
func Write(w io.Writer, s *types.ResearchSummary, f Format) error {
	switch f {
	case FormatMarkdown:
		return Markdown(w, s)
	case FormatCSL:
		return CSL(w, s)
	case FormatBibTeX:
		return BibTeX(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Markdown writes the title, content and a numbered reference list whose
// numbers match the in-text markers.
func Markdown(w io.Writer, s *types.ResearchSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	b.WriteString(strings.TrimSpace(s.Content))
	b.WriteString("\n\n## References\n\n")
	for i, c := range s.Citations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, citation.Display(c))
	}

	var meta []string
	if s.ModelUsed != "" {
		meta = append(meta, "model: "+s.ModelUsed)
	}
	if !s.CreatedAt.IsZero() {
		meta = append(meta, "generated: "+s.CreatedAt.UTC().Format("2006-01-02"))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "\n---\n_%s_\n", strings.Join(meta, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// exportable returns the citations that point at a real source, paired
// with their 1-based position in the summary.
func exportable(s *types.ResearchSummary) []numbered {
	var out []numbered
	for i, c := range s.Citations {
		if citation.IsSentinel(c) || c.URL == "" {
			continue
		}
		out = append(out, numbered{N: i + 1, Citation: c})
	}
	return out
}

type numbered struct {
	N int
	types.Citation
}

// sourceInfo describes a citation for the bibliographic formats.
type sourceInfo struct {
	Title  string
	DOI    string
	Arxiv  string
	Kind   string
	Author string
}

func describe(c types.Citation) sourceInfo {
	info := sourceInfo{Author: c.Authors, Kind: "webpage"}

	if title, ok := citation.ExtractTitle(c.Text); ok {
		info.Title = title
	} else {
		info.Title = c.Text
	}

	if u, err := url.Parse(c.URL); err == nil && u.Host != "" {
		switch idType, id := citation.ClassifyURL(u); idType {
		case citation.TypeDOI:
			info.DOI = id
			info.Kind = "article-journal"
		case citation.TypeArxiv:
			info.Arxiv = id
			info.Kind = "article"
		case citation.TypePubMed, citation.TypePMC:
			info.Kind = "article-journal"
		}
	}
	return info
}
