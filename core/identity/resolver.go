package identity

import (
	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/darasa/core"
)

// Identity is the acting user. Anonymous is a valid terminal state, not an
// error: screens render a usable empty view for it.
type Identity struct {
	UID       string
	Anonymous bool
}

// Resolver produces the acting user's identifier by checking the in-memory
// auth session first, then the persisted preference store.
type Resolver struct {
	session core.AuthSession
	kv      core.KeyValueStore
}

func NewResolver(session core.AuthSession, kv core.KeyValueStore) *Resolver {
	return &Resolver{session: session, kv: kv}
}

// Resolve never fails; absence of both sources yields an anonymous identity.
// The session always takes precedence over whatever the local store holds.
func (r *Resolver) Resolve() Identity {
	if r.session != nil {
		if uid := r.session.CurrentUID(); uid != "" {
			return Identity{UID: uid}
		}
	}
	if r.kv != nil {
		if uid, ok, err := r.kv.Get(core.KeyUserUID); err == nil && ok && uid != "" {
			return Identity{UID: uid}
		}
		// last resort: subject of the cached ID token. The provider verified
		// it before it was cached; only the claim is read here.
		if tok, ok, err := r.kv.Get(core.KeyIDToken); err == nil && ok && tok != "" {
			if uid := tokenSubject(tok); uid != "" {
				return Identity{UID: uid}
			}
		}
	}
	return Identity{Anonymous: true}
}

func tokenSubject(token string) string {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return ""
	}
	return claims.Subject
}
