// Package gate decides, per page load, whether the current session may see
// a page or must be sent elsewhere.
package gate

import (
	"slices"

	"heart-clinic/internal/model"
)

const LoginPath = "/"

// Decision is the outcome of Check. An empty Redirect means allow.
type Decision struct {
	Redirect string
	// HideDoctorNav tells renderers to drop doctor-only links such as the
	// prediction form.
	HideDoctorNav bool
}

func (d Decision) Allowed() bool { return d.Redirect == "" }

func IsLoginPage(page string) bool {
	switch page {
	case "/", "/index.html", "/login":
		return true
	}
	return false
}

// Check applies the access rules. allowed == nil admits any logged-in role;
// a non-nil allowed admits only the roles it lists.
func Check(s model.Session, allowed []model.Role, page string) Decision {
	if !s.LoggedIn() {
		if IsLoginPage(page) {
			return Decision{}
		}
		return Decision{Redirect: LoginPath}
	}

	d := Decision{HideDoctorNav: s.Role == model.RolePatient}
	if allowed != nil && !slices.Contains(allowed, s.Role) {
		d.Redirect = s.Role.Home()
	}
	return d
}
