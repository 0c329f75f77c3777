package core

type (
	PushMessage struct {
		To    string                 `json:"to"`
		Title string                 `json:"title"`
		Body  string                 `json:"body"`
		Data  map[string]interface{} `json:"data,omitempty"`
	}

	// PushService delivers notifications fire-and-forget; there is no
	// delivery confirmation handling beyond logging the response body.
	PushService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...PushMessage)
	}
)
