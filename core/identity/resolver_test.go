package identity

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
)

type sessionStub string

func (s sessionStub) CurrentUID() string { return string(s) }

type kvStub map[string]string

func (kv kvStub) Get(key string) (string, bool, error) {
	v, ok := kv[key]
	return v, ok, nil
}

func (kv kvStub) Set(key, value string) error {
	kv[key] = value
	return nil
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.StandardClaims{Subject: subject})
	ss, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	return ss
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		session core.AuthSession
		kv      core.KeyValueStore
		want    Identity
	}{
		{
			name:    "session takes precedence over persisted uid",
			session: sessionStub("session-uid"),
			kv:      kvStub{core.KeyUserUID: "stale-uid"},
			want:    Identity{UID: "session-uid"},
		},
		{
			name:    "empty session falls back to persisted uid",
			session: sessionStub(""),
			kv:      kvStub{core.KeyUserUID: "local-uid"},
			want:    Identity{UID: "local-uid"},
		},
		{
			name:    "no session handle falls back to persisted uid",
			session: nil,
			kv:      kvStub{core.KeyUserUID: "local-uid"},
			want:    Identity{UID: "local-uid"},
		},
		{
			name:    "both empty is anonymous, not an error",
			session: sessionStub(""),
			kv:      kvStub{},
			want:    Identity{Anonymous: true},
		},
		{
			name:    "nothing at all is anonymous",
			session: nil,
			kv:      nil,
			want:    Identity{Anonymous: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(tt.session, tt.kv).Resolve()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Resolve_idTokenFallback(t *testing.T) {
	kv := kvStub{core.KeyIDToken: signedToken(t, "token-uid")}

	got := NewResolver(nil, kv).Resolve()
	assert.Equal(t, Identity{UID: "token-uid"}, got)

	// a garbled cached token must not break resolution
	kv[core.KeyIDToken] = "not-a-jwt"
	got = NewResolver(nil, kv).Resolve()
	assert.Equal(t, Identity{Anonymous: true}, got)

	// persisted uid still wins over the token
	kv[core.KeyIDToken] = signedToken(t, "token-uid")
	kv[core.KeyUserUID] = "local-uid"
	got = NewResolver(nil, kv).Resolve()
	assert.Equal(t, Identity{UID: "local-uid"}, got)
}
