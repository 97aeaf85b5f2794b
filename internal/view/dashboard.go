package view

import "heart-clinic/internal/model"

const (
	TipHigh = "Your latest result shows an elevated risk. Please book a consultation with your doctor."
	TipLow  = "Your risk is low. Keep it that way with regular exercise, a balanced diet and routine check-ups."
)

type Vital struct {
	Label string
	Value string
	Unit  string
}

type HistoryItem struct {
	Record model.MedicalRecord
	Tier   model.Tier
}

type TrendPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type Dashboard struct {
	// NoData is set when the patient has no records; nothing else is filled.
	NoData bool

	Greeting    string
	Latest      model.MedicalRecord
	Tier        model.Tier
	RingColor   string
	Vitals      []Vital
	History     []HistoryItem
	Trend       []TrendPoint
	Tip         string
	ShowConsult bool
}

var vitals = []struct {
	key, label, unit string
}{
	{"trestbps", "Resting Blood Pressure", "mmHg"},
	{"chol", "Cholesterol", "mg/dL"},
	{"thalach", "Max Heart Rate", "bpm"},
}

// BuildDashboard summarises a patient's own records. Records are assumed
// newest first, so the first one is the latest. Other roles get NoData.
func BuildDashboard(records []model.MedicalRecord, s model.Session) Dashboard {
	if !s.LoggedIn() || s.Role != model.RolePatient {
		return Dashboard{NoData: true}
	}
	own := ownedBy(records, s.User, recordOwner)
	if len(own) == 0 {
		return Dashboard{NoData: true}
	}

	latest := own[0]
	tier := latest.Tier()
	d := Dashboard{
		Greeting:  "Hello, " + latest.Name,
		Latest:    latest,
		Tier:      tier,
		RingColor: tier.Color(),
		History:   make([]HistoryItem, 0, len(own)-1),
		Trend:     make([]TrendPoint, 0, len(own)),
	}

	for _, v := range vitals {
		if val, ok := latest.Details[v.key]; ok && val != "" {
			d.Vitals = append(d.Vitals, Vital{Label: v.label, Value: val, Unit: v.unit})
		}
	}
	for _, r := range own[1:] {
		d.History = append(d.History, HistoryItem{Record: r, Tier: r.Tier()})
	}
	for i := len(own) - 1; i >= 0; i-- {
		d.Trend = append(d.Trend, TrendPoint{Date: own[i].Date, Score: own[i].Score})
	}

	if tier == model.TierHigh {
		d.Tip, d.ShowConsult = TipHigh, true
	} else {
		d.Tip = TipLow
	}
	return d
}
