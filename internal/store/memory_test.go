package store

import (
	"context"
	"testing"

	"heart-clinic/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := &model.User{Username: "ann", PasswordHash: "h", Role: model.RolePatient}
	require.NoError(t, m.CreateUser(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	err := m.CreateUser(ctx, &model.User{Username: "ann", Role: model.RolePatient})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := m.UserByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, got.Role)

	_, err = m.UserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, id := range []int64{100, 300, 200} {
		require.NoError(t, m.CreateRecord(ctx, &model.MedicalRecord{ID: id, Details: map[string]string{"chol": "200"}}))
	}
	assert.ErrorIs(t, m.CreateRecord(ctx, &model.MedicalRecord{ID: 200}), ErrDuplicate)

	got, err := m.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{300, 200, 100}, []int64{got[0].ID, got[1].ID, got[2].ID})

	// callers cannot mutate stored details
	got[0].Details["chol"] = "999"
	again, _ := m.ListRecords(ctx)
	assert.Equal(t, "200", again[0].Details["chol"])
}

func TestMemoryAppointmentsAndPrescriptions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	a := &model.Appointment{PatientUsername: "ann", PatientName: "Ann", Date: "2026-01-02", Time: "10:00", Reason: "checkup"}
	require.NoError(t, m.CreateAppointment(ctx, a))
	assert.Equal(t, model.StatusScheduled, a.Status)

	p := &model.Prescription{PatientUsername: "ann", DoctorUsername: "doctor", Medication: "Aspirin"}
	require.NoError(t, m.CreatePrescription(ctx, p))

	appts, err := m.ListAppointments(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 1)

	rx, err := m.ListPrescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", rx[0].Medication)
}
