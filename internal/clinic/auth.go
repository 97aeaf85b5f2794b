package clinic

import (
	"context"
	"errors"
	"strings"

	"heart-clinic/internal/api"
	"heart-clinic/internal/auth"
	"heart-clinic/internal/model"
	"heart-clinic/internal/store"
)

// Login checks credentials. A wrong password, unknown user or role mismatch
// is a normal unsuccessful response, not an error; errors are storage faults.
func (s *Service) Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error) {
	want := model.ParseRole(req.Role)
	fail := api.LoginResponse{Message: "Invalid credentials"}
	if want != "" {
		fail.Message = "Invalid " + strings.ToLower(string(want)) + " credentials"
	}
	if req.Role != "" && want == "" {
		return fail, nil
	}

	if req.Username == "" || req.Password == "" {
		return fail, nil
	}

	u, err := s.repo.UserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Audit(req.Username, "login", "session", false)
		return fail, nil
	}
	if err != nil {
		return api.LoginResponse{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) || (want != "" && u.Role != want) {
		s.log.Audit(req.Username, "login", "session", false)
		return fail, nil
	}

	tok, err := auth.MakeToken(u.Username, u.Role, s.secret, auth.TokenTTL)
	if err != nil {
		return api.LoginResponse{}, err
	}
	s.log.Audit(u.Username, "login", "session", true)
	return api.LoginResponse{Success: true, Redirect: u.Role.Home(), Token: tok}, nil
}
