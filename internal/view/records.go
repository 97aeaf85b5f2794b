package view

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"heart-clinic/internal/model"
)

type RecordsView struct {
	Rows          []model.MedicalRecord
	TotalCount    int
	HighRiskCount int
	LowRiskCount  int
	// Empty asks the renderer for an explicit empty state.
	Empty bool
	// ShowTotalPatients is off for patients, who only ever see themselves.
	ShowTotalPatients bool
}

// BuildRecordsView filters to the patient's own records for a Patient and
// passes everything through for a Doctor. Order is kept as given.
func BuildRecordsView(records []model.MedicalRecord, s model.Session) RecordsView {
	var rows []model.MedicalRecord
	if s.LoggedIn() && s.Role == model.RoleDoctor {
		rows = append(make([]model.MedicalRecord, 0, len(records)), records...)
	} else {
		rows = ownedBy(records, s.User, recordOwner)
		if !s.LoggedIn() {
			rows = rows[:0]
		}
	}

	v := RecordsView{
		Rows:              rows,
		TotalCount:        len(rows),
		Empty:             len(rows) == 0,
		ShowTotalPatients: s.Role == model.RoleDoctor,
	}
	for _, r := range rows {
		if r.Tier() == model.TierHigh {
			v.HighRiskCount++
		} else {
			v.LowRiskCount++
		}
	}
	return v
}

// FindRecord looks a record up by id. The id may be any integer or float
// type, a json.Number or a string; stored and queried ids are compared in
// canonical string form.
func FindRecord(records []model.MedicalRecord, id any) (model.MedicalRecord, bool) {
	want := CanonicalID(id)
	if want == "" {
		return model.MedicalRecord{}, false
	}
	for _, r := range records {
		if CanonicalID(r.ID) == want {
			return r, true
		}
	}
	return model.MedicalRecord{}, false
}

// CanonicalID renders an id the same way whatever type it arrived as.
func CanonicalID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil && isIntegral(f) && strings.ContainsAny(s, ".eE") {
			return strconv.FormatInt(int64(f), 10)
		}
		return s
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return CanonicalID(float64(v))
	case float64:
		if isIntegral(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return CanonicalID(v.String())
	default:
		return fmt.Sprint(v)
	}
}

func isIntegral(f float64) bool {
	return f == float64(int64(f))
}
