package types

// Event represents a structured state change recorded by the ledger for
// downstream indexers and UIs.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
