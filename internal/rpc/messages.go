package rpc

import (
	"encoding/json"
	"fmt"

	"heart-clinic/internal/model"

	"google.golang.org/protobuf/types/known/structpb"
)

type RecordList struct {
	Records []model.MedicalRecord `json:"records"`
}

type AppointmentList struct {
	Appointments []model.Appointment `json:"appointments"`
}

type PrescriptionList struct {
	Prescriptions []model.Prescription `json:"prescriptions"`
}

// ToStruct converts any JSON-encodable value with an object shape.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes s into v. It goes through AsMap and encoding/json
// rather than protojson so large integer ids are not written in exponent
// form.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
