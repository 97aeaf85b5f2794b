package store

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"heart-clinic/internal/model"
)

// Memory is a process-local Repository used when no database is configured
// and in tests.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]model.User
	records       map[int64]model.MedicalRecord
	appointments  []model.Appointment
	prescriptions []model.Prescription
	nextUserID    int64
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]model.User),
		records: make(map[int64]model.MedicalRecord),
	}
}

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return ErrDuplicate
	}
	m.nextUserID++
	u.ID = m.nextUserID
	u.CreatedAt = time.Now()
	m.users[u.Username] = *u
	return nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) CreateRecord(_ context.Context, r *model.MedicalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; ok {
		return ErrDuplicate
	}
	cp := *r
	cp.Details = maps.Clone(r.Details)
	m.records[r.ID] = cp
	return nil
}

func (m *Memory) ListRecords(_ context.Context) ([]model.MedicalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.MedicalRecord, 0, len(m.records))
	for _, r := range m.records {
		r.Details = maps.Clone(r.Details)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) CreateAppointment(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}
	a.ID = int64(len(m.appointments) + 1)
	m.appointments = append(m.appointments, *a)
	return nil
}

func (m *Memory) ListAppointments(_ context.Context) ([]model.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Appointment, len(m.appointments))
	copy(out, m.appointments)
	return out, nil
}

func (m *Memory) CreatePrescription(_ context.Context, p *model.Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.prescriptions) + 1)
	m.prescriptions = append(m.prescriptions, *p)
	return nil
}

func (m *Memory) ListPrescriptions(_ context.Context) ([]model.Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Prescription, len(m.prescriptions))
	copy(out, m.prescriptions)
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

var _ Repository = (*Memory)(nil)
