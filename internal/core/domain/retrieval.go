package domain

// SimilarChunk is one similarity-search hit. Transient, never persisted.
type SimilarChunk struct {
	Text         string  `json:"text"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	PageNumber   int     `json:"page_number"`
	Score        float64 `json:"score"`
}

// QueryInput crosses the orchestrator boundary from the transport adapter.
type QueryInput struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryOutput is owned by the caller; slices are always non-nil.
type QueryOutput struct {
	Answer       string   `json:"answer"`
	Sources      []string `json:"sources"`
	DocumentName string   `json:"document_name,omitempty"`
	DownloadURL  string   `json:"download_url,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
}

// RawStatistics is what the vector store reports. Maps may be nil; the
// statistics use case normalizes them before they leave the core.
type RawStatistics struct {
	TotalDocuments int
	TotalChunks    int
	TotalPages     int
	Categories     map[string]int
	DocumentTypes  map[string]int
}

// StatsOutput always carries well-typed fields: counts default to zero and
// both maps are non-nil.
type StatsOutput struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	TotalPages     int            `json:"total_pages"`
	Categories     map[string]int `json:"categories"`
	DocumentTypes  map[string]int `json:"document_types"`
}
