package api

// QuantityRequest тело POST /inventory/{id}/quantity
type QuantityRequest struct {
	Reason   string `json:"reason,omitempty"`
	Quantity int    `json:"quantity"`
}

// DeleteResponse ответ на DELETE /inventory/{id}
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
