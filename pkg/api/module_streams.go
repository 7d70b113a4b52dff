package api

type Stream struct {
	Name        string              `json:"name"`                  // Name of the module
	Stream      string              `json:"stream"`                // Module stream name
	Version     uint64              `json:"version,omitempty"`     // Module stream version
	Context     string              `json:"context,omitempty"`     // Context of the module
	Arch        string              `json:"arch,omitempty"`        // The architecture of the module
	NSVCA       string              `json:"nsvca"`                 // name:stream:version:context:arch
	Summary     string              `json:"summary"`               // Module summary
	Description string              `json:"description,omitempty"` // Module description
	Profiles    map[string][]string `json:"profiles,omitempty"`    // Module profile data
}

type DocumentResult struct {
	Document string  `json:"document"`         // Document type, e.g. modulemd or modulemd-obsoletes
	Version  uint64  `json:"version"`          // Document schema version
	Valid    bool    `json:"valid"`            // Whether the document parsed and validated
	Line     int     `json:"line,omitempty"`   // Line the document starts on, for failures
	Error    string  `json:"error,omitempty"`  // Failure message
	Stream   *Stream `json:"stream,omitempty"` // Stream information for module stream documents
}

type ValidationResponse struct {
	Valid     bool             `json:"valid"`     // True when every document is valid
	Strict    bool             `json:"strict"`    // Strictness used for parsing
	Documents []DocumentResult `json:"documents"` // Parsed documents in stream order, then failures
}

// Failed counts the invalid documents of the response.
func (r ValidationResponse) Failed() int {
	failed := 0
	for _, doc := range r.Documents {
		if !doc.Valid {
			failed++
		}
	}
	return failed
}
