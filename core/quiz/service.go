package quiz

import (
	"context"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// Service loads quiz questions and persists terminal scores.
type Service struct {
	store    core.DocumentStore
	students *student.Service
	sess     core.SessionContext
	logger   core.Logger
}

func NewService(store core.DocumentStore, students *student.Service, sess core.SessionContext, logger core.Logger) *Service {
	return &Service{store: store, students: students, sess: sess, logger: logger}
}

// Questions loads the quiz for a topic.
func (svc *Service) Questions(ctx context.Context, topic string) ([]Question, error) {
	docs, err := svc.store.Query(ctx, "quizzes",
		core.Filter{Field: "tenantId", Value: svc.sess.Tenant.ID},
		core.Filter{Field: "topicId", Value: topic},
	)
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Question{
			ID:      doc.ID,
			Prompt:  core.DocString(doc.Fields, "prompt"),
			Options: core.DocStringSlice(doc.Fields, "options"),
			Correct: core.DocInt(doc.Fields, "correct"),
		})
	}
	return out, nil
}

// Complete persists a finished session's score on the student record,
// exactly once per session. The persisted value is Session.Percent, the same
// number the result screen renders.
func (svc *Service) Complete(ctx context.Context, topic string, sess *Session) error {
	if !sess.Finished() {
		return ErrNotFinished
	}
	if sess.persisted {
		return nil
	}
	if err := svc.students.CompleteTopic(ctx, topic, sess.Percent()); err != nil {
		return err
	}
	sess.persisted = true
	return nil
}
