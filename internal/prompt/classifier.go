// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import "strings"

// Classifier decides whether a query should be routed through the
// gene-research pipeline variant. The boundary is a policy value, not a
// fixed rule: callers can swap the keyword set or the match threshold.
type Classifier struct {
	// Keywords are matched case-insensitively as substrings of the query.
	Keywords []string

	// MinMatches is the number of distinct keyword hits required before a
	// query is classified as gene research (default 1).
	MinMatches int
}

// defaultGeneKeywords is the default high-signal vocabulary for gene and
// molecular biology queries. Deliberately narrow: generic research words
// ("study", "analysis", "method") stay out so ordinary topics are not
// misrouted.
var defaultGeneKeywords = []string{
	"gene", "genome", "genomic", "genetic", "allele", "genotype", "phenotype",
	"protein", "enzyme", "kinase", "phosphatase", "receptor", "ligand",
	"mutation", "expression", "transcription", "translation", "regulation",
	"pathway", "metabolism", "biosynthesis", "metabolic",
	"chromosome", "chromatin", "epigenetic", "exon", "intron", "promoter",
	"oncogene", "tumor suppressor", "knockout", "crispr",
	"phosphorylation", "methylation", "acetylation", "ubiquitination",
	"uniprot", "pubmed", "kegg", "reactome", "ncbi", "pdb",
}

// NewGeneClassifier returns a classifier with the default keyword policy.
func NewGeneClassifier() Classifier {
	return Classifier{Keywords: defaultGeneKeywords, MinMatches: 1}
}

// IsGeneResearchQuery reports whether the query reads like a gene-function
// question under the classifier's policy. Best effort: misclassification is
// accepted and only changes which prompt variants and databases are used.
func (c Classifier) IsGeneResearchQuery(query string) bool {
	min := c.MinMatches
	if min <= 0 {
		min = 1
	}
	q := strings.ToLower(query)
	hits := 0
	for _, kw := range c.Keywords {
		if strings.Contains(q, kw) {
			hits++
			if hits >= min {
				return true
			}
		}
	}
	return false
}

// QueryScope maps a query onto the category hint passed to search providers:
// "pathway", "structure", "literature", or "" for general.
func QueryScope(query string) string {
	q := strings.ToLower(query)
	switch {
	case containsAny(q, "pathway", "metabol", "kegg", "reactome", "biosynthesis"):
		return "pathway"
	case containsAny(q, "structure", "pdb", "crystal", "3d"):
		return "structure"
	case containsAny(q, "literature", "review", "paper", "study"):
		return "literature"
	default:
		return ""
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
