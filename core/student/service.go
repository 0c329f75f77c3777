package student

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/realtime"
)

var (
	// errors
	ErrNotFound         = errors.New("student not found")
	ErrIdentityRequired = errors.New("a signed-in student is required for this action")
)

// Service reads and mutates the acting student's profile. Every write is
// last-write-wins; concurrent devices race and the later write silently wins.
type Service struct {
	store  core.DocumentStore
	sess   core.SessionContext
	logger core.Logger
}

func NewService(store core.DocumentStore, sess core.SessionContext, logger core.Logger) *Service {
	return &Service{store: store, sess: sess, logger: logger}
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	doc, err := svc.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, core.ErrNoDocument) {
			return Student{}, ErrNotFound
		}
		return Student{}, err
	}
	return FromDocument(doc), nil
}

// Self returns the acting student's profile.
func (svc *Service) Self(ctx context.Context) (Student, error) {
	if svc.sess.Anonymous {
		return Student{}, ErrIdentityRequired
	}
	return svc.Get(ctx, svc.sess.UID)
}

// SetGrade persists the grade picked during the entry flow, creating the
// profile record on first use.
func (svc *Service) SetGrade(ctx context.Context, gs GradeSelection) error {
	if svc.sess.Anonymous {
		return ErrIdentityRequired
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	return svc.store.Set(ctx, Collection, svc.sess.UID, map[string]interface{}{
		"grade":     gs.Grade,
		"tenantId":  svc.sess.Tenant.ID,
		"updatedAt": time.Now().UTC(),
	})
}

// CompleteTopic records a finished topic and its quiz score on the acting
// student's record: the topic joins the completed set and the score lands
// under its own key so other topics' scores are untouched.
func (svc *Service) CompleteTopic(ctx context.Context, topic string, score int) error {
	if svc.sess.Anonymous {
		return ErrIdentityRequired
	}
	if err := core.Validate.Var(topic, "required,topicid"); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "topic", Error: "invalid topic identifier"})
	}

	self, err := svc.Self(ctx)
	if err != nil {
		return err
	}
	completed := self.CompletedTopics
	if !self.HasCompleted(topic) {
		completed = append(completed, topic)
	}
	return svc.store.Update(ctx, Collection, svc.sess.UID, map[string]interface{}{
		"completedTopics":            completed,
		"assignmentResults." + topic: score,
		"updatedAt":                  time.Now().UTC(),
	})
}

// RegisterPushToken saves the device push token on the profile and caches it
// locally so registration is not repeated on every launch.
func (svc *Service) RegisterPushToken(ctx context.Context, kv core.KeyValueStore, token string) error {
	if svc.sess.Anonymous {
		return ErrIdentityRequired
	}
	token = core.CleanString(token)
	if token == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "push_token", Error: "this field is required"})
	}
	if err := svc.store.Update(ctx, Collection, svc.sess.UID, map[string]interface{}{
		"pushToken": token,
	}); err != nil {
		return err
	}
	if kv != nil {
		if err := kv.Set(core.KeyPushToken, token); err != nil {
			svc.logger.Warn("caching push token locally failed", err)
		}
	}
	return nil
}

// Watch subscribes to every profile in the session's tenant. The caller owns
// the returned handle and must Close it when its scope ends.
func (svc *Service) Watch(ctx context.Context, handler func([]Student)) (*realtime.Subscription, error) {
	return realtime.Watch(ctx, svc.store, Collection, func(docs []core.Document) {
		students := make([]Student, 0, len(docs))
		for _, doc := range docs {
			students = append(students, FromDocument(doc))
		}
		handler(students)
	}, core.Filter{Field: "tenantId", Value: svc.sess.Tenant.ID})
}
