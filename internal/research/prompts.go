// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"text/template"
)

// optimizerSystemPrompt is the fixed instruction for the query rewrite call.
const optimizerSystemPrompt = `You rewrite research requests into search queries for an academic literature search engine.
Given a topic, an abstract, or a list of keywords, produce one dense paragraph of search-optimized text that names the core concepts, their synonyms and the technical vocabulary a relevant paper would use.
Output only that paragraph. No explanation, no preamble, no quotes, no lists.`

// structurerSystemTmpl is the instruction for the formatting call. It is
// rendered with the size of the citation list so the model is told the exact
// range of markers it may use.
var structurerSystemTmpl = template.Must(template.New("structurer-system").Parse(`You format literature review findings for a researcher.

Rules:
1. Start with a single title line of the form "# <title>".
2. Rewrite the findings as a clear, well-organized review in Markdown. Keep every factual claim and its citation marker.
{{- if eq .N 1}}
3. Cite sources only with the marker [1]. There is exactly one source.
{{- else}}
3. Cite sources only with the markers [1] through [{{.N}}]. There are exactly {{.N}} sources.
{{- end}}
4. Never invent a citation, never use a number outside that range, and never cite a source that is not in the list.
   Use the supplied numbers as given: do not skip, merge, renumber or reorder them.
5. Do not add a References, Sources or Bibliography section. The citation list is shown separately.
`))

// structurerUserTmpl carries the run context and the enumerated sources.
var structurerUserTmpl = template.Must(template.New("structurer-user").Parse(`Topic: {{.Topic}}

Search query: {{.Query}}

Findings:
{{.Content}}

Sources:
{{.References}}`))

type structurerSystemData struct {
	N int
}

type structurerUserData struct {
	Topic      string
	Query      string
	Content    string
	References string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
