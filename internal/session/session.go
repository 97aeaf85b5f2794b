// Package session keeps the portal's per-browser state: who is logged in,
// their role, the backend token and the last viewed prediction result.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"heart-clinic/internal/auth"
	"heart-clinic/internal/model"

	"github.com/google/uuid"
)

// Keys of the per-client slot.
const (
	KeyUser       = "currentUser"
	KeyRole       = "currentRole"
	KeyLastResult = "lastResult"
	KeyToken      = "authToken"
)

const CookieName = "clinic_client"

type ctxKey struct{}

var errNoClient = errors.New("session: request has no client id")

// Manager identifies browsers with a signed client-id cookie and keeps their
// values in a KV.
type Manager struct {
	kv     KV
	secret string
	ttl    time.Duration
	Secure bool
}

func NewManager(kv KV, secret string, ttl time.Duration) *Manager {
	return &Manager{kv: kv, secret: secret, ttl: ttl}
}

// Middleware makes sure every request carries a client id, issuing a new
// cookie when the current one is missing, forged or expired.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if claims, err := auth.ParseToken(c.Value, m.secret); err == nil {
				id = claims.Subject
			}
		}
		if id == "" {
			id = uuid.NewString()
			tok, err := auth.MakeToken(id, "", m.secret, m.ttl)
			if err != nil {
				http.Error(w, "session error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    tok,
				Path:     "/",
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				Secure:   m.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// WithClientID is used by tests that bypass Middleware.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func clientID(ctx context.Context) (string, error) {
	id, _ := ctx.Value(ctxKey{}).(string)
	if id == "" {
		return "", errNoClient
	}
	return id, nil
}

func (m *Manager) values(ctx context.Context) (map[string]string, error) {
	id, err := clientID(ctx)
	if err != nil {
		return nil, err
	}
	return m.kv.Get(ctx, id)
}

// Session returns the logged-in user. A partial or unknown-role slot reads
// as logged out.
func (m *Manager) Session(ctx context.Context) (model.Session, error) {
	v, err := m.values(ctx)
	if err != nil {
		return model.Session{}, err
	}
	s := model.Session{User: v[KeyUser], Role: model.ParseRole(v[KeyRole])}
	if !s.LoggedIn() {
		return model.Session{}, nil
	}
	return s, nil
}

func (m *Manager) Token(ctx context.Context) (string, error) {
	v, err := m.values(ctx)
	if err != nil {
		return "", err
	}
	return v[KeyToken], nil
}

func (m *Manager) Login(ctx context.Context, s model.Session, token string) error {
	id, err := clientID(ctx)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, id, map[string]string{
		KeyUser:  s.User,
		KeyRole:  string(s.Role),
		KeyToken: token,
	})
}

// Logout clears identity but keeps lastResult.
func (m *Manager) Logout(ctx context.Context) error {
	id, err := clientID(ctx)
	if err != nil {
		return err
	}
	return m.kv.Delete(ctx, id, KeyUser, KeyRole, KeyToken)
}

func (m *Manager) SetLastResult(ctx context.Context, rec model.MedicalRecord) error {
	id, err := clientID(ctx)
	if err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, id, map[string]string{KeyLastResult: string(b)})
}

// LastResult returns nil when nothing has been stored.
func (m *Manager) LastResult(ctx context.Context) (*model.MedicalRecord, error) {
	v, err := m.values(ctx)
	if err != nil {
		return nil, err
	}
	raw := v[KeyLastResult]
	if raw == "" {
		return nil, nil
	}
	var rec model.MedicalRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode last result: %w", err)
	}
	return &rec, nil
}
