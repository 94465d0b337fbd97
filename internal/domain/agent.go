package domain

// AgentDefinition describes one remote analytics workflow. Definitions are
// loaded once from configuration and read-only afterwards.
type AgentDefinition struct {
	Name         string       `json:"name"`
	Endpoint     string       `json:"endpoint"`
	Enabled      bool         `json:"enabled"`
	Keywords     []string     `json:"keywords,omitempty"`
	Description  string       `json:"description,omitempty"`
	DisplayGroup DisplayGroup `json:"display_group"`
}

// UploadedFile is one file of a batch, held in memory for the duration of
// the batch and discarded after invocation.
type UploadedFile struct {
	Filename string
	Content  []byte
}
