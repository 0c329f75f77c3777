package doubt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/realtime"
	"github.com/trezcool/darasa/core/student"
)

var (
	// errors
	ErrNotFound         = errors.New("doubt not found")
	ErrReplyNotFound    = errors.New("reply not found")
	ErrNotAuthor        = errors.New("only the author can mark this doubt solved")
	ErrIdentityRequired = errors.New("a signed-in student is required for this action")
)

// Service owns the doubts workflow: ask, reply, accept an answer. Writes are
// last-write-wins; concurrent replies to the same thread race and the later
// write keeps only its own view of the reply list.
type Service struct {
	store  core.DocumentStore
	push   core.PushService
	sess   core.SessionContext
	logger core.Logger
}

func NewService(store core.DocumentStore, push core.PushService, sess core.SessionContext, logger core.Logger) *Service {
	return &Service{store: store, push: push, sess: sess, logger: logger}
}

func (svc *Service) get(ctx context.Context, id string) (Doubt, error) {
	doc, err := svc.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, core.ErrNoDocument) {
			return Doubt{}, ErrNotFound
		}
		return Doubt{}, err
	}
	return FromDocument(doc), nil
}

// Ask creates a new thread and returns its server-assigned identifier. The
// doubt carries an owner field, so an anonymous session cannot ask.
func (svc *Service) Ask(ctx context.Context, author Author, nd NewDoubt) (string, error) {
	if author.ID == "" {
		return "", ErrIdentityRequired
	}
	if err := nd.Validate(); err != nil {
		return "", err
	}
	return svc.store.Add(ctx, Collection, map[string]interface{}{
		"authorId":   author.ID,
		"authorName": author.Name,
		"avatar":     author.Avatar.String,
		"subject":    nd.Subject,
		"question":   nd.Question,
		"tenantId":   svc.sess.Tenant.ID,
		"solved":     false,
		"replies":    []interface{}{},
		"createdAt":  time.Now().UTC(),
	})
}

// Reply appends to the thread's reply list. Reply IDs are random, not
// time-based, so rapid concurrent posts cannot collide on the identifier
// (they still race on the list itself, which stays last-write-wins).
func (svc *Service) Reply(ctx context.Context, author Author, doubtID string, nr NewReply) (Reply, error) {
	if author.ID == "" {
		return Reply{}, ErrIdentityRequired
	}
	if err := nr.Validate(); err != nil {
		return Reply{}, err
	}

	d, err := svc.get(ctx, doubtID)
	if err != nil {
		return Reply{}, err
	}
	reply := Reply{
		ID:        uuid.New().String(),
		AuthorID:  author.ID,
		Author:    author.Name,
		Text:      nr.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.store.Update(ctx, Collection, doubtID, map[string]interface{}{
		"replies": replyFields(append(d.Replies, reply)),
	}); err != nil {
		return Reply{}, err
	}

	svc.notifyAuthor(ctx, d, reply)
	return reply, nil
}

// notifyAuthor pushes the new reply to the thread's author, fire-and-forget.
// Self-replies and authors without a registered device are skipped.
func (svc *Service) notifyAuthor(ctx context.Context, d Doubt, reply Reply) {
	if svc.push == nil || d.AuthorID == "" || d.AuthorID == reply.AuthorID {
		return
	}
	doc, err := svc.store.Get(ctx, student.Collection, d.AuthorID)
	if err != nil {
		svc.logger.Debug("skipping reply notification: "+d.AuthorID, err)
		return
	}
	author := student.FromDocument(doc)
	if !author.PushToken.Valid {
		return
	}
	svc.push.SendMessages(core.PushMessage{
		To:    author.PushToken.String,
		Title: "New reply on your doubt",
		Body:  reply.Text,
		Data:  map[string]interface{}{"doubtId": d.ID},
	})
}

// MarkSolved accepts a reply: the thread's solved flag is set and the
// accepted reply's correctness flag flipped in the same write. Only the
// thread's author may accept; this is enforced here only, the store has no
// access-control layer of its own.
func (svc *Service) MarkSolved(ctx context.Context, actorUID, doubtID, replyID string) error {
	d, err := svc.get(ctx, doubtID)
	if err != nil {
		return err
	}
	if d.AuthorID == "" || d.AuthorID != actorUID {
		return ErrNotAuthor
	}

	var found bool
	for i := range d.Replies {
		if d.Replies[i].ID == replyID {
			d.Replies[i].IsCorrect = true
			found = true
			break
		}
	}
	if !found {
		return ErrReplyNotFound
	}
	return svc.store.Update(ctx, Collection, doubtID, map[string]interface{}{
		"solved":  true,
		"replies": replyFields(d.Replies),
	})
}

// Watch subscribes to the tenant's threads, optionally narrowed to one
// subject tag. The caller owns the handle and must Close it on screen exit.
func (svc *Service) Watch(ctx context.Context, subject string, handler func([]Doubt)) (*realtime.Subscription, error) {
	filters := []core.Filter{{Field: "tenantId", Value: svc.sess.Tenant.ID}}
	if subject = core.CleanString(subject); subject != "" {
		filters = append(filters, core.Filter{Field: "subject", Value: subject})
	}
	return realtime.Watch(ctx, svc.store, Collection, func(docs []core.Document) {
		doubts := make([]Doubt, 0, len(docs))
		for _, doc := range docs {
			doubts = append(doubts, FromDocument(doc))
		}
		handler(doubts)
	}, filters...)
}
