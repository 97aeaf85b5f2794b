// Package view turns fetched clinic entities plus the caller's session into
// display models. Every builder is a pure function of its arguments.
package view

import "heart-clinic/internal/model"

// Options switches optional parts of the portal on or off.
type Options struct {
	// HasMobileField enriches appointment rows with the patient's mobile
	// number taken from their records.
	HasMobileField bool
	// HasPrescriptions exposes the prescriptions pages.
	HasPrescriptions bool
}

// ownedBy keeps the items whose owner equals user, in order.
func ownedBy[T any](items []T, user string, owner func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if owner(it) == user {
			out = append(out, it)
		}
	}
	return out
}

func recordOwner(r model.MedicalRecord) string { return r.PatientUsername }
