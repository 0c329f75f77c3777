package homework

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/realtime"
)

var (
	// errors
	ErrNotFound         = errors.New("homework not found")
	ErrIdentityRequired = errors.New("a signed-in student is required to submit")
)

// Service owns the homework list and the submission pipeline.
type Service struct {
	store  core.DocumentStore
	blob   core.BlobStore
	sess   core.SessionContext
	logger core.Logger
}

func NewService(store core.DocumentStore, blob core.BlobStore, sess core.SessionContext, logger core.Logger) *Service {
	return &Service{store: store, blob: blob, sess: sess, logger: logger}
}

// Query lists the homework published for the tenant and grade.
func (svc *Service) Query(ctx context.Context, grade int) ([]Homework, error) {
	docs, err := svc.store.Query(ctx, Collection,
		core.Filter{Field: "tenantId", Value: svc.sess.Tenant.ID},
		core.Filter{Field: "grade", Value: grade},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying homework")
	}
	out := make([]Homework, 0, len(docs))
	for _, doc := range docs {
		out = append(out, FromDocument(doc))
	}
	return out, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Homework, error) {
	doc, err := svc.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrNoDocument {
			return Homework{}, ErrNotFound
		}
		return Homework{}, err
	}
	return FromDocument(doc), nil
}

// Submit runs the pipeline: validate the draft, upload the file, then write
// the single submission record keyed by (homework, student). The metadata
// write only happens after the upload resolved a durable URL; a failed write
// after a successful upload leaves an orphaned asset, never a dangling
// record. Nothing is retried; the draft survives any failure so the user can
// retry manually.
func (svc *Service) Submit(ctx context.Context, draft *Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	// the submission record carries an owner field; an anonymous submission
	// would be meaningless, so identity is required here.
	if svc.sess.Anonymous {
		return ErrIdentityRequired
	}

	path := fmt.Sprintf("tenants/%s/homework/%s/%s/%s",
		svc.sess.Tenant.ID, draft.HomeworkID, svc.sess.UID, draft.File.Name)
	ref, err := svc.blob.Upload(ctx, path, draft.File.ContentType, draft.File.Data)
	if err != nil {
		return errors.Wrap(err, "uploading homework file")
	}
	url, err := svc.blob.ResolveURL(ctx, ref)
	if err != nil {
		return errors.Wrap(err, "resolving homework file url")
	}

	// update-or-create on the natural key; resubmission overwrites the prior
	// record wholesale, clearing any teacher feedback. Concurrent submissions
	// from two devices race and the later write wins.
	id := SubmissionID(draft.HomeworkID, svc.sess.UID)
	if err := svc.store.Set(ctx, SubmissionsCollection, id, map[string]interface{}{
		"homeworkId":     draft.HomeworkID,
		"studentId":      svc.sess.UID,
		"tenantId":       svc.sess.Tenant.ID,
		"fileUrl":        url,
		"status":         StatusSubmitted,
		"teacherComment": "",
		"teacherFile":    "",
		"submittedAt":    time.Now().UTC(),
	}); err != nil {
		return errors.Wrap(err, "writing submission")
	}

	draft.clear()
	return nil
}

// WatchSubmissions subscribes to the acting student's submissions. The
// caller owns the handle and must Close it on screen exit.
func (svc *Service) WatchSubmissions(ctx context.Context, handler func([]Submission)) (*realtime.Subscription, error) {
	if svc.sess.Anonymous {
		return nil, ErrIdentityRequired
	}
	return realtime.Watch(ctx, svc.store, SubmissionsCollection, func(docs []core.Document) {
		subs := make([]Submission, 0, len(docs))
		for _, doc := range docs {
			subs = append(subs, SubmissionFromDocument(doc))
		}
		handler(subs)
	},
		core.Filter{Field: "tenantId", Value: svc.sess.Tenant.ID},
		core.Filter{Field: "studentId", Value: svc.sess.UID},
	)
}
