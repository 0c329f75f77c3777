package doubt

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Collection is the remote collection holding doubt threads.
const Collection = "doubts"

type (
	// Doubt is a question thread raised by a student. Replies are nested in
	// the thread document and appended without deduplication.
	Doubt struct {
		ID        string      `json:"id"`
		AuthorID  string      `json:"author_id"`
		Author    string      `json:"author"`
		Avatar    null.String `json:"avatar,omitempty"`
		Subject   string      `json:"subject"`
		Question  string      `json:"question"`
		Tenant    string      `json:"tenant_id"`
		Solved    bool        `json:"solved"`
		Replies   []Reply     `json:"replies"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Reply struct {
		ID        string    `json:"id"`
		AuthorID  string    `json:"author_id"`
		Author    string    `json:"author"`
		Text      string    `json:"text"`
		IsCorrect bool      `json:"is_correct"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Author is the acting participant as rendered on the thread.
	Author struct {
		ID     string
		Name   string
		Avatar null.String
	}
)

// FromDocument decodes a raw field bag into a Doubt. Reply timestamps on
// existing documents come in two shapes (server timestamp or ISO string);
// both are normalized here, and all new writes carry a single shape.
func FromDocument(doc core.Document) Doubt {
	d := Doubt{
		ID:       doc.ID,
		AuthorID: core.DocString(doc.Fields, "authorId"),
		Author:   core.DocString(doc.Fields, "authorName"),
		Subject:  core.DocString(doc.Fields, "subject"),
		Question: core.DocString(doc.Fields, "question"),
		Tenant:   core.DocString(doc.Fields, "tenantId"),
		Solved:   core.DocBool(doc.Fields, "solved"),
	}
	if av := core.DocString(doc.Fields, "avatar"); av != "" {
		d.Avatar = null.StringFrom(av)
	}
	if ts, ok := core.DocTime(doc.Fields["createdAt"]); ok {
		d.CreatedAt = ts
	}
	for _, m := range core.DocMapSlice(doc.Fields, "replies") {
		d.Replies = append(d.Replies, replyFromFields(m))
	}
	return d
}

func replyFromFields(m map[string]interface{}) Reply {
	r := Reply{
		ID:        core.DocString(m, "id"),
		AuthorID:  core.DocString(m, "authorId"),
		Author:    core.DocString(m, "authorName"),
		Text:      core.DocString(m, "text"),
		IsCorrect: core.DocBool(m, "isCorrect"),
	}
	if ts, ok := core.DocTime(m["createdAt"]); ok {
		r.CreatedAt = ts
	}
	return r
}

func (r Reply) fields() map[string]interface{} {
	return map[string]interface{}{
		"id":         r.ID,
		"authorId":   r.AuthorID,
		"authorName": r.Author,
		"text":       r.Text,
		"isCorrect":  r.IsCorrect,
		"createdAt":  r.CreatedAt,
	}
}

func replyFields(replies []Reply) []interface{} {
	out := make([]interface{}, 0, len(replies))
	for _, r := range replies {
		out = append(out, r.fields())
	}
	return out
}

// NewDoubt is the ask-a-question draft.
type NewDoubt struct {
	Subject  string `json:"subject" validate:"required"`
	Question string `json:"question" validate:"required"`
}

func (nd *NewDoubt) Validate() error {
	nd.Subject = core.CleanString(nd.Subject)
	nd.Question = core.CleanString(nd.Question)
	return core.Validate.Struct(nd)
}

// NewReply is the typed-reply draft.
type NewReply struct {
	Text string `json:"text" validate:"required"`
}

func (nr *NewReply) Validate() error {
	nr.Text = core.CleanString(nr.Text)
	return core.Validate.Struct(nr)
}
