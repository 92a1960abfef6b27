// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation turns the source URLs returned by a search-augmented
// answering service into display citations, and keeps in-text [n] markers
// consistent with the citation list when duplicates are removed.
//
// Everything inferred here is cosmetic. Author and title guesses come from the
// shape of the URL and are never treated as bibliographic ground truth.
package citation

import (
	"errors"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// SentinelText is the text of the placeholder citation returned when a
// research call produced no sources.
const SentinelText = "No citations available for this research."

var errNoHost = errors.New("missing host")

// Sentinel returns the placeholder citation used when no sources exist.
func Sentinel() types.Citation {
	return types.Citation{Text: SentinelText}
}

// IsSentinel reports whether c is the no-citations placeholder.
func IsSentinel(c types.Citation) bool {
	return c.URL == "" && c.Authors == "" && c.Text == SentinelText
}

// venues maps host suffixes of well-known publishers and repositories to the
// attribution shown for them.
var venues = []struct {
	suffix string
	name   string
}{
	{"nature.com", "Nature"},
	{"science.org", "Science"},
	{"sciencedirect.com", "ScienceDirect"},
	{"springer.com", "Springer"},
	{"link.springer.com", "Springer"},
	{"wiley.com", "Wiley"},
	{"onlinelibrary.wiley.com", "Wiley"},
	{"ieeexplore.ieee.org", "IEEE"},
	{"dl.acm.org", "ACM Digital Library"},
	{"jstor.org", "JSTOR"},
	{"researchgate.net", "ResearchGate"},
	{"semanticscholar.org", "Semantic Scholar"},
	{"scholar.google.com", "Google Scholar"},
	{"plos.org", "PLOS"},
	{"frontiersin.org", "Frontiers"},
	{"mdpi.com", "MDPI"},
	{"tandfonline.com", "Taylor & Francis"},
	{"sagepub.com", "SAGE"},
	{"cell.com", "Cell Press"},
	{"thelancet.com", "The Lancet"},
	{"nejm.org", "New England Journal of Medicine"},
	{"bmj.com", "BMJ"},
	{"pnas.org", "PNAS"},
	{"ipcc.ch", "IPCC"},
	{"who.int", "World Health Organization"},
	{"worldbank.org", "World Bank"},
	{"oecd.org", "OECD"},
	{"un.org", "United Nations"},
	{"nih.gov", "National Institutes of Health"},
	{"cdc.gov", "Centers for Disease Control and Prevention"},
	{"biorxiv.org", "bioRxiv"},
	{"medrxiv.org", "medRxiv"},
	{"ssrn.com", "SSRN"},
	{"github.com", "GitHub"},
}

// Normalize converts an ordered list of source URLs into citations of the same
// length and order. An empty list yields exactly one sentinel citation so that
// renderers always have something safe to show. Malformed URLs fall back to a
// citation whose text and url are the raw string.
func Normalize(urls []string) []types.Citation {
	if len(urls) == 0 {
		return []types.Citation{Sentinel()}
	}

	out := make([]types.Citation, len(urls))
	for i, raw := range urls {
		out[i] = FromURL(raw)
	}
	return out
}

// FromURL builds one citation from a source URL.
func FromURL(raw string) types.Citation {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return types.Citation{Text: raw, URL: raw}
	}

	host := hostOf(u)
	idType, id := ClassifyURL(u)

	switch idType {
	case TypeArxiv:
		return types.Citation{Authors: "arXiv", Text: "arXiv preprint arXiv:" + id, URL: trimmed}
	case TypePubMed:
		return types.Citation{Authors: "PubMed", Text: "PMID: " + id, URL: trimmed}
	case TypePMC:
		return types.Citation{Authors: "PubMed Central", Text: "PMCID: " + id, URL: trimmed}
	case TypeDOI:
		return types.Citation{Authors: venueFor(host), Text: "DOI: " + id, URL: trimmed}
	}

	if strings.HasSuffix(host, "wikipedia.org") {
		segs := pathSegments(u)
		if len(segs) >= 2 && segs[0] == "wiki" {
			return types.Citation{
				Authors: "Wikipedia contributors",
				Text:    humanize(segs[len(segs)-1]) + ". Wikipedia",
				URL:     trimmed,
			}
		}
	}

	authors := venueFor(host)
	if authors == "" {
		authors = siteName(host)
	}
	title := titleFromPath(u)
	if title == "" {
		return types.Citation{Authors: authors, Text: host, URL: trimmed}
	}
	return types.Citation{Authors: authors, Text: title + ". " + authors, URL: trimmed}
}

// venueFor returns the known venue name for host, or "".
func venueFor(host string) string {
	for _, v := range venues {
		if host == v.suffix || strings.HasSuffix(host, "."+v.suffix) {
			return v.name
		}
	}
	return ""
}

// siteName guesses a site name from the registrable part of the host:
// "blog.example.co.uk" becomes "Example", "a.org" becomes "A".
func siteName(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return capitalize(host)
	}
	name := labels[len(labels)-2]
	// Second-level country domains: example.co.uk, example.ac.jp.
	if len(labels) >= 3 && len(name) <= 3 && len(labels[len(labels)-1]) == 2 {
		name = labels[len(labels)-3]
	}
	return capitalize(name)
}

// titleFromPath turns the last meaningful path segment into a title guess.
// Purely numeric or very short segments are skipped.
func titleFromPath(u *url.URL) string {
	segs := pathSegments(u)
	for i := len(segs) - 1; i >= 0; i-- {
		seg := strings.TrimSuffix(segs[i], path.Ext(segs[i]))
		if len(seg) < 1 || isNumeric(seg) {
			continue
		}
		switch strings.ToLower(seg) {
		case "index", "article", "articles", "abs", "full", "view", "content", "doi", "pdf", "html":
			continue
		}
		return humanize(seg)
	}
	return ""
}

// humanize unescapes a path segment and replaces separators with spaces.
func humanize(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		seg = s
	}
	seg = strings.NewReplacer("_", " ", "-", " ", "+", " ").Replace(seg)
	return capitalize(strings.Join(strings.Fields(seg), " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
