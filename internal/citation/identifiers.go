// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"net/url"
	"regexp"
	"strings"
)

// IdentifierType classifies a recognized scholarly identifier found in a URL.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeArxiv
	TypeDOI
	TypePubMed
	TypePMC
)

func (t IdentifierType) String() string {
	switch t {
	case TypeArxiv:
		return "arxiv"
	case TypeDOI:
		return "doi"
	case TypePubMed:
		return "pubmed"
	case TypePMC:
		return "pmc"
	default:
		return "unknown"
	}
}

// arxivIDPattern matches new-style arXiv IDs with an optional version: "2301.07041v2".
var arxivIDPattern = regexp.MustCompile(`^(\d{4}\.\d{4,5})(v\d+)?$`)

// doiPattern matches a DOI anywhere in a path: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:a-z0-9]+`)

// pmidPattern matches a bare PubMed ID path segment.
var pmidPattern = regexp.MustCompile(`^\d{5,9}$`)

// pmcPattern matches a PubMed Central ID path segment.
var pmcPattern = regexp.MustCompile(`(?i)^PMC\d{4,9}$`)

// trackingParams are query parameters dropped during URL normalization.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "msclkid", "ref", "source",
}

// ClassifyURL returns the scholarly identifier embedded in u, if any.
func ClassifyURL(u *url.URL) (IdentifierType, string) {
	host := hostOf(u)
	segments := pathSegments(u)

	switch {
	case strings.HasSuffix(host, "arxiv.org"):
		if len(segments) >= 2 && (segments[0] == "abs" || segments[0] == "pdf" || segments[0] == "html") {
			id := strings.TrimSuffix(segments[len(segments)-1], ".pdf")
			if m := arxivIDPattern.FindStringSubmatch(id); m != nil {
				return TypeArxiv, m[1]
			}
		}
	case host == "pubmed.ncbi.nlm.nih.gov" && len(segments) >= 1:
		if pmidPattern.MatchString(segments[0]) {
			return TypePubMed, segments[0]
		}
	case strings.HasSuffix(host, "ncbi.nlm.nih.gov"):
		for _, s := range segments {
			if pmcPattern.MatchString(s) {
				return TypePMC, strings.ToUpper(s)
			}
		}
	}

	if doi := extractDOI(u); doi != "" {
		return TypeDOI, doi
	}
	return TypeUnknown, ""
}

// extractDOI finds a DOI on a doi.org host, in a "doi" query parameter, or as
// a 10.NNNN/ pattern in the path.
func extractDOI(u *url.URL) string {
	if strings.HasSuffix(hostOf(u), "doi.org") {
		if doi := strings.Trim(u.Path, "/"); doi != "" {
			return doi
		}
	}
	if q := u.Query().Get("doi"); q != "" {
		return q
	}
	if m := doiPattern.FindString(u.Path); m != "" {
		return strings.TrimRight(m, "./")
	}
	return ""
}

// NormalizeURL returns a lowercase canonical form of rawURL for deduplication:
// lowercase scheme and host, no "www.", no fragment, no tracking parameters,
// no trailing slash. It fails for unparseable URLs and URLs without a host.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "normalize", URL: rawURL, Err: errNoHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return strings.ToLower(u.String()), nil
}

// hostOf returns the lowercase host without port and without "www.".
func hostOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// pathSegments splits the URL path into its non-empty segments.
func pathSegments(u *url.URL) []string {
	var out []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
