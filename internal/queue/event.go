package queue

import "encoding/json"

// Change kinds announced on the catalog queue.
const (
	ChangeCreate = "CREATE"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
	ChangeCancel = "CANCEL"
)

// CatalogChangeEvent is one change notification from the registrar's
// broker.  The embedded event snapshot is kept raw and unused: delivery
// is at-least-once with no ordering guarantee, so acting on the payload
// could replay stale state.  The notification is treated purely as a
// "something changed" signal and answered with a full catalog resync.
type CatalogChangeEvent struct {
	EventID int64           `json:"eventoId"`
	Kind    string          `json:"tipoCambio"`
	Event   json.RawMessage `json:"evento,omitempty"`
}
