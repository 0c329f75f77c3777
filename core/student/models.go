package student

import (
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Collection is the remote collection holding student profiles.
const Collection = "users"

// Student is the remote profile record. The store owns it; the client only
// holds transient copies.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade"`
	// Tenant is the school this profile belongs to.
	Tenant string `json:"tenant_id"`
	// CompletedTopics is membership-only and advisory: presence implies the
	// hook video was finished, nothing client-side enforces it.
	CompletedTopics []string `json:"completed_topics"`
	// TopicScores maps topic ID to the persisted quiz score (0-100).
	TopicScores map[string]int `json:"topic_scores"`
	PushToken   null.String    `json:"push_token,omitempty"`
	Avatar      null.String    `json:"avatar,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromDocument decodes a raw field bag into a Student, defaulting missing or
// mistyped fields rather than propagating untyped access.
func FromDocument(doc core.Document) Student {
	s := Student{
		ID:              doc.ID,
		Name:            core.DocString(doc.Fields, "name"),
		Grade:           core.DocInt(doc.Fields, "grade"),
		Tenant:          core.DocString(doc.Fields, "tenantId"),
		CompletedTopics: core.DocStringSlice(doc.Fields, "completedTopics"),
		TopicScores:     make(map[string]int),
	}
	for topic, score := range core.DocMap(doc.Fields, "assignmentResults") {
		s.TopicScores[topic] = core.IntValue(score)
	}
	if tok := core.DocString(doc.Fields, "pushToken"); tok != "" {
		s.PushToken = null.StringFrom(tok)
	}
	if av := core.DocString(doc.Fields, "avatar"); av != "" {
		s.Avatar = null.StringFrom(av)
	}
	if ts, ok := core.DocTime(doc.Fields["createdAt"]); ok {
		s.CreatedAt = ts
	}
	return s
}

func (s Student) HasCompleted(topic string) bool {
	for _, t := range s.CompletedTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// GradeSelection is the grade-picker draft.
type GradeSelection struct {
	Grade int `json:"grade" validate:"required,min=1,max=12"`
}

func (gs GradeSelection) Validate() error { return core.Validate.Struct(gs) }

// Assignment is a derived, per-topic view synthesized from CompletedTopics
// and TopicScores. It is never persisted.
type Assignment struct {
	Topic     string `json:"topic"`
	Completed bool   `json:"completed"`
	Score     int    `json:"score"`
	Scored    bool   `json:"scored"`
}

// Assignments derives the assignment list for a student without mutating it.
// Topics are ordered lexically so the view is deterministic.
func Assignments(s Student) []Assignment {
	seen := make(map[string]bool, len(s.CompletedTopics)+len(s.TopicScores))
	topics := make([]string, 0, len(s.CompletedTopics)+len(s.TopicScores))
	for _, t := range s.CompletedTopics {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	for t := range s.TopicScores {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)

	out := make([]Assignment, 0, len(topics))
	for _, t := range topics {
		score, scored := s.TopicScores[t]
		out = append(out, Assignment{
			Topic:     t,
			Completed: s.HasCompleted(t),
			Score:     score,
			Scored:    scored,
		})
	}
	return out
}
