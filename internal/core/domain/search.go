package domain

// SearchResultType names the entity a search hit points to.
type SearchResultType string

const (
	SearchClient SearchResultType = "client"
	SearchCase   SearchResultType = "case"
)

// Match priorities, lower sorts first.
const (
	PriorityExact    = 0
	PriorityPrefix   = 1
	PriorityContains = 2
)

// SearchResult is one merged hit of the global search.
type SearchResult struct {
	Type     SearchResultType `json:"type"`
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Priority int              `json:"priority"`
}
