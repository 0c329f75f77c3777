package student

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	inmemstore "github.com/trezcool/darasa/storage/document/inmem"
)

type kvStub map[string]string

func (kv kvStub) Get(key string) (string, bool, error) {
	v, ok := kv[key]
	return v, ok, nil
}

func (kv kvStub) Set(key, value string) error {
	kv[key] = value
	return nil
}

func testSession(uid string) core.SessionContext {
	return core.SessionContext{
		UID:       uid,
		Anonymous: uid == "",
		Tenant:    core.TenantContext{ID: "greenhill"},
	}
}

func setup(t *testing.T, uid string) (*Service, *inmemstore.Store) {
	t.Helper()
	store := inmemstore.New()
	svc := NewService(store, testSession(uid), core.NopLogger{})
	return svc, store
}

func createStudent(t *testing.T, store *inmemstore.Store, id, name string, completed []string) {
	t.Helper()
	err := store.Set(context.Background(), Collection, id, map[string]interface{}{
		"name":            name,
		"grade":           7,
		"tenantId":        "greenhill",
		"completedTopics": completed,
		"createdAt":       time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestService_SetGrade(t *testing.T) {
	svc, store := setup(t, "stu1")
	ctx := context.Background()

	require.NoError(t, svc.SetGrade(ctx, GradeSelection{Grade: 8}))

	doc, err := store.Get(ctx, Collection, "stu1")
	require.NoError(t, err)
	assert.Equal(t, 8, core.DocInt(doc.Fields, "grade"))
	assert.Equal(t, "greenhill", core.DocString(doc.Fields, "tenantId"))

	t.Run("grade out of range", func(t *testing.T) {
		assert.Error(t, svc.SetGrade(ctx, GradeSelection{Grade: 13}))
		assert.Error(t, svc.SetGrade(ctx, GradeSelection{}))
	})

	t.Run("anonymous cannot pick a grade", func(t *testing.T) {
		anon, _ := setup(t, "")
		assert.Equal(t, ErrIdentityRequired, anon.SetGrade(ctx, GradeSelection{Grade: 8}))
	})
}

func TestService_CompleteTopic(t *testing.T) {
	svc, store := setup(t, "stu1")
	ctx := context.Background()
	createStudent(t, store, "stu1", "Asha", []string{"fractions"})

	require.NoError(t, svc.CompleteTopic(ctx, "decimals", 80))

	self, err := svc.Self(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fractions", "decimals"}, self.CompletedTopics)
	assert.Equal(t, 80, self.TopicScores["decimals"])

	t.Run("retake overwrites only its own topic score", func(t *testing.T) {
		require.NoError(t, svc.CompleteTopic(ctx, "decimals", 60))

		self, err := svc.Self(ctx)
		require.NoError(t, err)
		assert.Equal(t, 60, self.TopicScores["decimals"])
		// completed set is membership-only: no duplicate entry
		assert.ElementsMatch(t, []string{"fractions", "decimals"}, self.CompletedTopics)
	})

	t.Run("other topics untouched", func(t *testing.T) {
		require.NoError(t, svc.CompleteTopic(ctx, "algebra", 100))

		self, err := svc.Self(ctx)
		require.NoError(t, err)
		assert.Equal(t, 60, self.TopicScores["decimals"])
		assert.Equal(t, 100, self.TopicScores["algebra"])
	})

	t.Run("invalid topic id", func(t *testing.T) {
		assert.Error(t, svc.CompleteTopic(ctx, "bad topic!", 50))
	})
}

func TestService_RegisterPushToken(t *testing.T) {
	svc, store := setup(t, "stu1")
	ctx := context.Background()
	createStudent(t, store, "stu1", "Asha", nil)
	kv := kvStub{}

	require.NoError(t, svc.RegisterPushToken(ctx, kv, "ExponentPushToken[abc]"))

	self, err := svc.Self(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[abc]", self.PushToken.String)
	assert.Equal(t, "ExponentPushToken[abc]", kv[core.KeyPushToken])

	t.Run("blank token rejected", func(t *testing.T) {
		assert.Error(t, svc.RegisterPushToken(ctx, kv, "   "))
	})
}

func TestService_Watch(t *testing.T) {
	svc, store := setup(t, "stu1")
	ctx := context.Background()
	createStudent(t, store, "stu1", "Asha", []string{"fractions"})

	var snapshots [][]Student
	sub, err := svc.Watch(ctx, func(students []Student) {
		snapshots = append(snapshots, students)
	})
	require.NoError(t, err)
	defer sub.Close()

	// initial load counts as a change
	require.Len(t, snapshots, 1)
	require.Len(t, snapshots[0], 1)
	assert.Equal(t, "Asha", snapshots[0][0].Name)

	// a write refreshes the snapshot; other tenants stay invisible
	createStudent(t, store, "stu2", "Brian", nil)
	require.NoError(t, store.Set(ctx, Collection, "other", map[string]interface{}{
		"name": "Zoe", "tenantId": "elsewhere", "createdAt": time.Now().UTC(),
	}))
	last := snapshots[len(snapshots)-1]
	assert.Len(t, last, 2)
}

func TestAssignments(t *testing.T) {
	s := Student{
		CompletedTopics: []string{"fractions", "decimals"},
		TopicScores:     map[string]int{"decimals": 75, "geometry": 40},
	}

	got := Assignments(s)

	want := []Assignment{
		{Topic: "decimals", Completed: true, Score: 75, Scored: true},
		{Topic: "fractions", Completed: true},
		{Topic: "geometry", Score: 40, Scored: true},
	}
	assert.Equal(t, want, got)

	// derivation never mutates the source
	assert.Equal(t, []string{"fractions", "decimals"}, s.CompletedTopics)
}
