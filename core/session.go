package core

// Local preference keys.
const (
	KeyUserUID   = "user_uid"
	KeyIDToken   = "id_token"
	KeyTenant    = "tenant"
	KeyTheme     = "theme"
	KeyPushToken = "push_token"
)

// SessionContext carries the acting user's resolved identity and the cached
// tenant/theme preferences. It is constructed once at the composition root
// and passed down explicitly; nothing reads it from ambient globals.
type SessionContext struct {
	UID       string
	Anonymous bool
	Tenant    TenantContext
	Theme     ThemeContext
}

// TenantContext identifies the organizational partition (school) every
// record read or written by this session is scoped to.
type TenantContext struct {
	ID string
}

// ThemeContext is the cached presentation preference. It never affects any
// remote write; it lives here so screens need no second lookup path.
type ThemeContext struct {
	Name string
}

// NewSessionContext assembles a session from a resolved identity and the
// persisted preference store, falling back to the configured default tenant.
func NewSessionContext(uid string, kv KeyValueStore, conf *Config) SessionContext {
	sess := SessionContext{
		UID:       uid,
		Anonymous: uid == "",
		Tenant:    TenantContext{ID: conf.DefaultTenant},
		Theme:     ThemeContext{Name: "light"},
	}
	if kv == nil {
		return sess
	}
	if tenant, ok, err := kv.Get(KeyTenant); err == nil && ok && tenant != "" {
		sess.Tenant.ID = tenant
	}
	if theme, ok, err := kv.Get(KeyTheme); err == nil && ok && theme != "" {
		sess.Theme.Name = theme
	}
	return sess
}
