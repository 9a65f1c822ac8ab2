package api

import "encoding/json"

// Message is one utterance in a backend response batch. The wire shape is a
// union: either a bare JSON string or an object carrying "text" (with
// "content" as a legacy fallback) and an optional "sender". Normalization
// happens here, at the ingestion boundary, so the rest of the pipeline only
// ever sees the struct form.
type Message struct {
	Text   string
	Sender string
}

// UnmarshalJSON accepts both union arms. A missing text field normalizes to
// the empty string rather than failing the batch.
func (m *Message) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		m.Text = plain
		m.Sender = ""
		return nil
	}

	var obj struct {
		Text    string `json:"text"`
		Content string `json:"content"`
		Sender  string `json:"sender"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	m.Text = obj.Text
	if m.Text == "" {
		m.Text = obj.Content
	}
	m.Sender = obj.Sender
	return nil
}
