package portal

import (
	"errors"
	"net/http"
	"strings"

	"heart-clinic/internal/api"
	"heart-clinic/internal/form"
	"heart-clinic/internal/gate"
	"heart-clinic/internal/gateway"
	"heart-clinic/internal/model"
)

type loginForm struct {
	Username string
	Role     string
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	s.render(w, r, http.StatusOK, "login", newPage("Login", sess, d, loginForm{Role: string(model.RoleDoctor)}))
}

func (s *Server) loginLimited(w http.ResponseWriter, r *http.Request) {
	pd := newPage("Login", model.Session{}, gate.Decision{}, loginForm{})
	pd.Alert = MsgTooManyLogins
	s.render(w, r, http.StatusTooManyRequests, "login", pd)
}

// login verifies the credentials with the backend and, on success, stores
// the identity and backend token in the session.
func (s *Server) login(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	req, err := form.Login(r.PostForm)
	lf := loginForm{Username: strings.TrimSpace(r.PostForm.Get("username")), Role: r.PostForm.Get("role")}
	fail := func(status int, msg string) {
		pd := newPage("Login", sess, d, lf)
		pd.Alert = msg
		s.render(w, r, status, "login", pd)
	}
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}
	role := model.ParseRole(req.Role)
	if role == "" {
		fail(http.StatusBadRequest, MsgInvalidRole)
		return
	}

	resp, err := s.gw.Login(r.Context(), req)
	if err != nil {
		var re *gateway.RemoteError
		if errors.As(err, &re) {
			s.log.Audit(req.Username, "login", "portal", false)
			fail(http.StatusUnauthorized, re.Message)
			return
		}
		s.log.WithContext(r.Context()).WithError(err).Error("login: backend unavailable")
		fail(http.StatusServiceUnavailable, MsgUnavailable)
		return
	}

	next := model.Session{User: req.Username, Role: role}
	if err := s.sessions.Login(r.Context(), next, resp.Token); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("login: store session")
		fail(http.StatusInternalServerError, "Could not start your session. Please try again.")
		return
	}
	s.log.Audit(req.Username, "login", "portal", true)

	target := resp.Redirect
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = role.Home()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// logout forgets who is logged in; the last viewed result stays.
func (s *Server) logout(w http.ResponseWriter, r *http.Request, sess model.Session, _ gate.Decision) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("logout")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	s.log.Audit(sess.User, "logout", "portal", true)
	http.Redirect(w, r, gate.LoginPath, http.StatusSeeOther)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	s.render(w, r, http.StatusOK, "home", newPage("Home", sess, d, nil))
}

// chat relays one message to the backend bot. Blank messages are ignored;
// an unreachable backend gets the canned fallback reply.
func (s *Server) chat(w http.ResponseWriter, r *http.Request, sess model.Session, _ gate.Decision) {
	msg := strings.TrimSpace(r.PostForm.Get("message"))
	if msg == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	reply, err := s.gw.Chat(s.backend(r), msg)
	if err != nil {
		s.log.WithContext(r.Context()).WithError(err).WithField("user", sess.User).Warn("chat failed")
		reply = ChatFallback
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{Reply: reply})
}
