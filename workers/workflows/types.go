package workflows

type ProcessDocumentWorkflowInput struct {
	Tenant     string   `json:"tenant"`
	DocumentID string   `json:"documentId"`
	Engines    []string `json:"engines"` // empty means the configured default set
}
