package homework

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	inmemblob "github.com/trezcool/darasa/storage/blob/inmem"
	inmemstore "github.com/trezcool/darasa/storage/document/inmem"
)

// failingBlob fails at a chosen pipeline step.
type failingBlob struct {
	failUpload  bool
	failResolve bool
}

func (b failingBlob) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	if b.failUpload {
		return "", errors.New("network down")
	}
	return path, nil
}

func (b failingBlob) ResolveURL(ctx context.Context, ref string) (string, error) {
	if b.failResolve {
		return "", errors.New("network down")
	}
	return "mem://" + ref, nil
}

func testSession(uid string) core.SessionContext {
	return core.SessionContext{
		UID:       uid,
		Anonymous: uid == "",
		Tenant:    core.TenantContext{ID: "greenhill"},
	}
}

func newDraft() *Draft {
	return &Draft{
		HomeworkID: "hw1",
		File: &LocalFile{
			Name:        "essay.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("jpeg-bytes"),
		},
	}
}

func submissions(t *testing.T, store *inmemstore.Store) []core.Document {
	t.Helper()
	docs, err := store.Query(context.Background(), SubmissionsCollection)
	require.NoError(t, err)
	return docs
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	blob := inmemblob.New()
	svc := NewService(store, blob, testSession("stu1"), core.NopLogger{})

	draft := newDraft()
	require.NoError(t, svc.Submit(ctx, draft))

	t.Run("one record on the natural key", func(t *testing.T) {
		docs := submissions(t, store)
		require.Len(t, docs, 1)
		sub := SubmissionFromDocument(docs[0])
		assert.Equal(t, SubmissionID("hw1", "stu1"), sub.ID)
		assert.Equal(t, "hw1", sub.HomeworkID)
		assert.Equal(t, "stu1", sub.StudentID)
		assert.Equal(t, "greenhill", sub.Tenant)
		assert.Equal(t, StatusSubmitted, sub.Status)
		assert.Equal(t, "mem://tenants/greenhill/homework/hw1/stu1/essay.jpg", sub.FileURL)
		assert.False(t, sub.SubmittedAt.IsZero())
	})

	t.Run("file landed in the bucket", func(t *testing.T) {
		data, ok := blob.Object("tenants/greenhill/homework/hw1/stu1/essay.jpg")
		require.True(t, ok)
		assert.Equal(t, "jpeg-bytes", string(data))
	})

	t.Run("draft cleared on success", func(t *testing.T) {
		assert.Nil(t, draft.File)
	})
}

func TestService_Submit_resubmission(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	svc := NewService(store, inmemblob.New(), testSession("stu1"), core.NopLogger{})

	require.NoError(t, svc.Submit(ctx, newDraft()))

	// a teacher checks it in the meantime
	id := SubmissionID("hw1", "stu1")
	require.NoError(t, store.Update(ctx, SubmissionsCollection, id, map[string]interface{}{
		"status":         StatusChecked,
		"teacherComment": "redo question 3",
		"teacherFile":    "corrections.pdf",
	}))

	second := &Draft{
		HomeworkID: "hw1",
		File:       &LocalFile{Name: "essay-v2.jpg", ContentType: "image/jpeg", Data: strings.NewReader("v2")},
	}
	require.NoError(t, svc.Submit(ctx, second))

	docs := submissions(t, store)
	require.Len(t, docs, 1, "resubmission must update, not add")
	sub := SubmissionFromDocument(docs[0])
	assert.Equal(t, StatusSubmitted, sub.Status)
	assert.False(t, sub.TeacherComment.Valid, "prior teacher comment must be cleared")
	assert.False(t, sub.TeacherFile.Valid)
	assert.Contains(t, sub.FileURL, "essay-v2.jpg")
}

func TestService_Submit_failures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty draft", func(t *testing.T) {
		svc := NewService(inmemstore.New(), inmemblob.New(), testSession("stu1"), core.NopLogger{})
		assert.Error(t, svc.Submit(ctx, &Draft{HomeworkID: "hw1"}))
		assert.Error(t, svc.Submit(ctx, &Draft{File: &LocalFile{Name: "a", Data: strings.NewReader("x")}}))
	})

	t.Run("anonymous cannot submit", func(t *testing.T) {
		svc := NewService(inmemstore.New(), inmemblob.New(), testSession(""), core.NopLogger{})
		assert.Equal(t, ErrIdentityRequired, svc.Submit(ctx, newDraft()))
	})

	t.Run("no metadata write on upload failure", func(t *testing.T) {
		store := inmemstore.New()
		svc := NewService(store, failingBlob{failUpload: true}, testSession("stu1"), core.NopLogger{})

		draft := newDraft()
		require.Error(t, svc.Submit(ctx, draft))
		assert.Empty(t, submissions(t, store), "no partial remote state")
		assert.NotNil(t, draft.File, "draft stays intact for manual retry")
	})

	t.Run("no metadata write on url resolution failure", func(t *testing.T) {
		store := inmemstore.New()
		svc := NewService(store, failingBlob{failResolve: true}, testSession("stu1"), core.NopLogger{})

		draft := newDraft()
		require.Error(t, svc.Submit(ctx, draft))
		assert.Empty(t, submissions(t, store))
		assert.NotNil(t, draft.File)
	})
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	svc := NewService(store, inmemblob.New(), testSession("stu1"), core.NopLogger{})

	seed := func(id string, grade int, tenant string) {
		require.NoError(t, store.Set(ctx, Collection, id, map[string]interface{}{
			"tenantId": tenant, "grade": grade, "subject": "math",
			"title": "Fractions worksheet", "dueDate": "next friday",
			"createdAt": time.Now().UTC(),
		}))
	}
	seed("hw1", 7, "greenhill")
	seed("hw2", 8, "greenhill")
	seed("hw3", 7, "elsewhere")

	got, err := svc.Query(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hw1", got[0].ID)
	assert.Equal(t, "next friday", got[0].DueDate)
}

func TestService_WatchSubmissions(t *testing.T) {
	ctx := context.Background()
	store := inmemstore.New()
	svc := NewService(store, inmemblob.New(), testSession("stu1"), core.NopLogger{})

	var last []Submission
	sub, err := svc.WatchSubmissions(ctx, func(subs []Submission) { last = subs })
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, last)

	require.NoError(t, svc.Submit(ctx, newDraft()))
	require.Len(t, last, 1)
	assert.Equal(t, StatusSubmitted, last[0].Status)

	t.Run("anonymous has no submissions feed", func(t *testing.T) {
		anon := NewService(store, inmemblob.New(), testSession(""), core.NopLogger{})
		_, err := anon.WatchSubmissions(ctx, func([]Submission) {})
		assert.Equal(t, ErrIdentityRequired, err)
	})
}
