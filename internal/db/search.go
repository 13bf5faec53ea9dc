package db

// TextQuery is the structured ranked query executed via FT.SEARCH. It is
// built once by the query layer and translated to engine syntax by the
// store implementation.
type TextQuery struct {
	IndexName string
	// Text is the free-text component matched against all TEXT fields with
	// their schema weights. Empty means match-all.
	Text string
	// TagField and Tags form a conjunctive pre-filter: every tag must match.
	TagField string
	Tags     []string
	// Limit bounds the returned entries; the result total is independent
	// of it.
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	// Total counts all documents matching the query regardless of Limit.
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
