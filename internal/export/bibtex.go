// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// bibtexEscaper protects characters that BibTeX treats specially.
var bibtexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
)

// BibTeX writes the summary's sources as BibTeX entries keyed "ref<n>".
// DOI sources become @article, everything else @misc with a \url.
func BibTeX(w io.Writer, s *types.ResearchSummary) error {
	var b strings.Builder
	for _, c := range exportable(s) {
		info := describe(c.Citation)
		kind := "misc"
		if info.DOI != "" {
			kind = "article"
		}

		fmt.Fprintf(&b, "@%s{ref%d,\n", kind, c.N)
		fmt.Fprintf(&b, "  title = {%s},\n", bibtexEscaper.Replace(info.Title))
		if info.Author != "" {
			// Double braces keep institutional names from being split.
			fmt.Fprintf(&b, "  author = {{%s}},\n", bibtexEscaper.Replace(info.Author))
		}
		if info.DOI != "" {
			fmt.Fprintf(&b, "  doi = {%s},\n", info.DOI)
		}
		if info.Arxiv != "" {
			fmt.Fprintf(&b, "  eprint = {%s},\n", info.Arxiv)
			fmt.Fprintf(&b, "  archivePrefix = {arXiv},\n")
		}
		fmt.Fprintf(&b, "  howpublished = {\\url{%s}},\n", c.URL)
		if !s.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "  note = {Accessed %s},\n", s.CreatedAt.UTC().Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "}\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
