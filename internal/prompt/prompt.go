// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt builds the parameterized prompts for each pipeline stage.
// All builders are pure string construction: structured inputs are serialized
// into tagged blocks so the model receives unambiguous, parseable context.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// systemTmpl is the shared system instruction. The model is told the current
// date so it does not argue with post-cutoff material.
var systemTmpl = template.Must(template.New("system").Parse(`You are an expert researcher. Today is {{.Now}}. Follow these instructions when responding:

- You may be asked to research subjects after your knowledge cutoff; assume the user is right when presented with news.
- The user is a highly experienced analyst; be as detailed as possible and make sure your response is correct.
- Be highly organized and proactive.
- Mistakes erode trust, so be accurate and thorough.
- Value good arguments over authorities.
- You may use high levels of speculation or prediction, just flag it.`))

// geneSystemTmpl is the system instruction for gene-function research runs.
var geneSystemTmpl = template.Must(template.New("geneSystem").Parse(`You are an expert molecular biologist and genomics researcher. Today is {{.Now}}. Follow these instructions when responding:

- Ground every statement in the retrieved literature and database records; never invent gene symbols, identifiers, or citations.
- Prefer peer-reviewed literature (PubMed) and curated databases (UniProt, KEGG) over general web material.
- Report organism, gene symbol, and experimental evidence explicitly.
- Preprints are not peer-reviewed; flag them when cited.
- Be precise with nomenclature: gene symbols italicized by convention, protein names in plain text.`))

var reportPlanTmpl = template.Must(template.New("reportPlan").Parse(`Given the following query from the user:
<QUERY>
{{.Query}}
</QUERY>

Generate a detailed plan for a research report on this topic. The plan lists
the report sections in order, with one short paragraph per section describing
what it covers and what evidence it needs. Respond with the plan in markdown.`))

var geneReportPlanTmpl = template.Must(template.New("geneReportPlan").Parse(`Given the following gene-function research query:
<QUERY>
{{.Query}}
</QUERY>

Generate a detailed plan for a gene research report. Cover at minimum: gene
identity and nomenclature, molecular function, expression and regulation,
interactions and pathways, disease or phenotype relevance, and open questions.
Describe per section what evidence it needs and which databases can supply it.
Respond with the plan in markdown.`))

var serpQueriesTmpl = template.Must(template.New("serpQueries").Parse(`This is the report plan:
<PLAN>
{{.Plan}}
</PLAN>

Based on the report plan, generate a list of SERP queries to research the
topic. Make sure each query is unique and not similar to the others.

You MUST respond in JSON matching this JSON schema:

{{.Schema}}

Respond with the JSON array only, no surrounding text.`))

var geneSerpQueriesTmpl = template.Must(template.New("geneSerpQueries").Parse(`This is the gene research report plan:
<PLAN>
{{.Plan}}
</PLAN>

Based on the report plan, generate a list of database search queries to
research the gene. Use database-appropriate syntax where helpful (e.g.
"TP53[Gene Name] AND Homo sapiens[Organism]" for PubMed). Make sure each
query is unique and not similar to the others.

You MUST respond in JSON matching this JSON schema:

{{.Schema}}

Respond with the JSON array only, no surrounding text.`))

var directSearchTmpl = template.Must(template.New("directSearch").Parse(`Search the web for information on the following query, prioritizing professional literature sources:
<QUERY>
{{.Query}}
</QUERY>

You need to organize the searched information according to the following requirements:
<RESEARCH_GOAL>
{{.ResearchGoal}}
</RESEARCH_GOAL>

Think like a human researcher. Generate a list of learnings from the search
results. Each learning must be unique, to the point, and as information dense
as possible: include entities, metrics, numbers, and dates when available.
The learnings will be used to research the topic further.`))

var searchResultTmpl = template.Must(template.New("searchResult").Parse(`Given the following contexts retrieved for the query:
<QUERY>
{{.Query}}
</QUERY>

You need to organize the retrieved information according to the following requirements:
<RESEARCH_GOAL>
{{.ResearchGoal}}
</RESEARCH_GOAL>

The retrieved contexts:
<CONTEXT>
{{.Context}}
</CONTEXT>

Think like a human researcher. Generate a list of learnings from the contexts.
Each learning must be unique, to the point, and as information dense as
possible: include entities, metrics, numbers, and dates when available. The
learnings will be used to research the topic further.`))

var geneSearchResultTmpl = template.Must(template.New("geneSearchResult").Parse(`Given the following contexts retrieved from biomedical databases for the query:
<QUERY>
{{.Query}}
</QUERY>

Source reliability guidance:
- PubMed records are peer-reviewed literature and carry the most weight.
- UniProt and KEGG entries are curated database records, authoritative for
  protein function and pathway membership.
- Anything else is supplementary.

You need to organize the retrieved information according to the following requirements:
<RESEARCH_GOAL>
{{.ResearchGoal}}
</RESEARCH_GOAL>

The retrieved contexts:
<CONTEXT>
{{.Context}}
</CONTEXT>

Think like a molecular biologist reviewing the literature. Generate a list of
learnings from the contexts. Each learning must be unique and information
dense: name genes, proteins, organisms, pathways, and quantitative results
explicitly. The learnings will be used to research the gene further.`))

var finalReportTmpl = template.Must(template.New("finalReport").Parse(`This is the report plan:
<PLAN>
{{.Plan}}
</PLAN>

Here are all the learnings from previous research:
<LEARNINGS>
{{.Learnings}}
</LEARNINGS>

Here are all the sources from previous research, if any:
<SOURCES>
{{.Sources}}
</SOURCES>

Here are all the images from previous research, if any:
<IMAGES>
{{.Images}}
</IMAGES>

Please write according to the user's writing requirements, if any:
<REQUIREMENT>
{{.Requirement}}
</REQUIREMENT>

Write a final report based on the report plan using the learnings from
research. Make it as detailed as possible and include ALL the learnings.
Start the report with a markdown # title on the first line.`))

// citationRules instructs the model to anchor bracketed citation numbers
// inline; downstream consumers parse the literal [n] pattern.
const citationRules = `Citation Rules:

- Only cite sources that are explicitly provided in the <SOURCES> section. NEVER invent references.
- Use the citation number format [number] in the corresponding parts of your answer, e.g. [1][2].
- Do not group citations at the end; place them where the cited material appears.
- Always maintain accurate correspondence between in-text citations and the source numbering.`

// imageRules instructs the model how to embed research images.
const imageRules = `Image Rules:

- Embed images where the surrounding paragraph relates to the image description.
- Use the syntax ![Image Description](image_url).
- Do not add any images at the end of the article.`

// SystemPrompt returns the shared system instruction with the current time
// substituted.
func SystemPrompt() string {
	return render(systemTmpl, struct{ Now string }{Now: time.Now().Format(time.RFC3339)})
}

// GeneSystemPrompt returns the gene research system instruction.
func GeneSystemPrompt() string {
	return render(geneSystemTmpl, struct{ Now string }{Now: time.Now().Format(time.RFC3339)})
}

// ResponseLanguagePrompt returns the trailing instruction that pins the
// response language. Empty language lets the model mirror the user.
func ResponseLanguagePrompt(language string) string {
	if language == "" {
		return "**Respond in the same language as the user's language**"
	}
	return fmt.Sprintf("**Respond in %s**", language)
}

// ReportPlanPrompt builds the planning prompt for a user query.
func ReportPlanPrompt(query string) string {
	return render(reportPlanTmpl, struct{ Query string }{Query: query})
}

// GeneReportPlanPrompt builds the planning prompt for a gene research query.
func GeneReportPlanPrompt(query string) string {
	return render(geneReportPlanTmpl, struct{ Query string }{Query: query})
}

// SERPQueriesPrompt builds the query-generation prompt from a report plan,
// embedding the query-list output schema.
func SERPQueriesPrompt(plan string) string {
	return render(serpQueriesTmpl, struct{ Plan, Schema string }{Plan: plan, Schema: SERPQuerySchemaJSON})
}

// GeneSERPQueriesPrompt builds the gene-flavored query-generation prompt.
func GeneSERPQueriesPrompt(plan string) string {
	return render(geneSerpQueriesTmpl, struct{ Plan, Schema string }{Plan: plan, Schema: SERPQuerySchemaJSON})
}

// DirectSearchPrompt builds the synthesis prompt for model-driven retrieval,
// where the model's own search tool supplies the sources.
func DirectSearchPrompt(query, researchGoal string) string {
	return render(directSearchTmpl, struct{ Query, ResearchGoal string }{Query: query, ResearchGoal: researchGoal})
}

// SearchResultPrompt builds the synthesis prompt embedding retrieved sources
// as tagged content blocks. When enableReferences is set the citation rules
// are appended so the model anchors [n] markers against the block indices.
func SearchResultPrompt(query, researchGoal string, sources []types.Source, enableReferences bool) string {
	p := render(searchResultTmpl, struct{ Query, ResearchGoal, Context string }{
		Query:        query,
		ResearchGoal: researchGoal,
		Context:      contentBlocks(sources),
	})
	if enableReferences {
		p += "\n\n" + citationRules
	}
	return p
}

// GeneSearchResultPrompt is the gene-flavored variant of SearchResultPrompt.
func GeneSearchResultPrompt(query, researchGoal string, sources []types.Source, enableReferences bool) string {
	p := render(geneSearchResultTmpl, struct{ Query, ResearchGoal, Context string }{
		Query:        query,
		ResearchGoal: researchGoal,
		Context:      contentBlocks(sources),
	})
	if enableReferences {
		p += "\n\n" + citationRules
	}
	return p
}

// FinalReportInput carries the accumulated run state into the final report
// prompt.
type FinalReportInput struct {
	Plan                string
	Learnings           []string
	Sources             []types.Source
	Images              []types.ImageSource
	Requirement         string
	EnableCitationImage bool
	EnableReferences    bool
}

// FinalReportPrompt builds the final report prompt from the accumulated plan,
// learnings, deduplicated sources and images.
func FinalReportPrompt(in FinalReportInput) string {
	p := render(finalReportTmpl, finalReportData(in))
	if in.EnableCitationImage {
		p += "\n**Including meaningful images from the previous research in the report is very helpful.**\n\n" + imageRules
	}
	if in.EnableReferences {
		p += "\n\n" + citationRules
	}
	return p
}

// GeneFinalReportPrompt builds the gene-flavored final report prompt. It
// shares the report template but swaps the system instruction at call sites.
func GeneFinalReportPrompt(in FinalReportInput) string {
	return FinalReportPrompt(in)
}

func finalReportData(in FinalReportInput) any {
	return struct{ Plan, Learnings, Sources, Images, Requirement string }{
		Plan:        in.Plan,
		Learnings:   learningBlocks(in.Learnings),
		Sources:     sourceBlocks(in.Sources),
		Images:      imageList(in.Images),
		Requirement: in.Requirement,
	}
}

// contentBlocks serializes sources as indexed content tags:
// <content index="1" url="...">text</content>. The index order defines the
// citation numbering the model must use.
func contentBlocks(sources []types.Source) string {
	blocks := make([]string, 0, len(sources))
	for i, s := range sources {
		blocks = append(blocks, fmt.Sprintf("<content index=%q url=%q>\n%s\n</content>", fmt.Sprint(i+1), s.URL, s.Content))
	}
	return strings.Join(blocks, "\n")
}

// sourceBlocks serializes sources as indexed source tags carrying the title.
func sourceBlocks(sources []types.Source) string {
	blocks := make([]string, 0, len(sources))
	for i, s := range sources {
		blocks = append(blocks, fmt.Sprintf("<source index=%q url=%q>\n%s\n</source>", fmt.Sprint(i+1), s.URL, s.Title))
	}
	return strings.Join(blocks, "\n")
}

// learningBlocks wraps each learning in a learning tag.
func learningBlocks(learnings []string) string {
	blocks := make([]string, 0, len(learnings))
	for _, l := range learnings {
		blocks = append(blocks, "<learning>\n"+l+"\n</learning>")
	}
	return strings.Join(blocks, "\n")
}

// imageList renders images as a numbered markdown image list.
func imageList(images []types.ImageSource) string {
	lines := make([]string, 0, len(images))
	for i, img := range images {
		lines = append(lines, fmt.Sprintf("%d. ![%s](%s)", i+1, img.Description, img.URL))
	}
	return strings.Join(lines, "\n")
}

// render executes a template into a string. Template execution can only fail
// on a malformed template, which is a programmer error.
func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("prompt template %s: %v", t.Name(), err))
	}
	return buf.String()
}
