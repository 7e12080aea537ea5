// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

// DatabaseCategory classifies a database by the kind of evidence it holds.
type DatabaseCategory string

const (
	CategoryLiterature DatabaseCategory = "literature"
	CategoryProtein    DatabaseCategory = "protein"
	CategoryPathway    DatabaseCategory = "pathway"
	CategoryWeb        DatabaseCategory = "web"
)

// DatabaseInfo describes one searchable database. The registry is data: the
// fan-out provider consults it to order and filter backends, the CLI prints
// it, and nothing else interprets it.
type DatabaseInfo struct {
	// Name is the backend identifier ("pubmed", "uniprot", "kegg", "tavily").
	Name string `yaml:"name"`

	// Category classifies the evidence the database holds.
	Category DatabaseCategory `yaml:"category"`

	// Priority orders databases within a fan-out; lower runs first.
	Priority int `yaml:"priority"`

	// Description explains what the database covers.
	Description string `yaml:"description"`
}

// Registry lists the known databases in priority order.
var Registry = []DatabaseInfo{
	{
		Name:        "pubmed",
		Category:    CategoryLiterature,
		Priority:    1,
		Description: "NCBI's biomedical literature database; peer-reviewed MEDLINE and life science journals.",
	},
	{
		Name:        "uniprot",
		Category:    CategoryProtein,
		Priority:    2,
		Description: "Curated protein knowledge base; authoritative for protein function and nomenclature.",
	},
	{
		Name:        "kegg",
		Category:    CategoryPathway,
		Priority:    3,
		Description: "Kyoto Encyclopedia of Genes and Genomes; pathway and genome database.",
	},
	{
		Name:        "tavily",
		Category:    CategoryWeb,
		Priority:    4,
		Description: "General web search; supplementary source for full-text access and context.",
	},
}

// scopeCategories maps a query scope hint onto the database categories that
// serve it best.
var scopeCategories = map[string][]DatabaseCategory{
	"pathway":    {CategoryPathway, CategoryLiterature},
	"structure":  {CategoryProtein, CategoryLiterature},
	"literature": {CategoryLiterature},
}

// backendServesScope reports whether the named database is preferred for the
// given scope hint.
func backendServesScope(name, scope string) bool {
	categories, ok := scopeCategories[scope]
	if !ok {
		return false
	}
	for _, info := range Registry {
		if info.Name != name {
			continue
		}
		for _, c := range categories {
			if info.Category == c {
				return true
			}
		}
	}
	return false
}
