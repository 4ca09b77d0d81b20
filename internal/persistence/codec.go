package persistence

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/petrijr/checkout/pkg/api"
)

// sessionPayload is the flat, gob-friendly form of a SessionRecord.
// WizardState.Err is an `any` and may hold arbitrary values at runtime;
// for storage it is flattened to its string form (empty = no error),
// which is what rendering layers consume anyway.
type sessionPayload struct {
	ID        string
	Step      int
	Payment   api.PaymentDetails
	Billing   api.BillingDetails
	IsLoading bool
	Error     string
	UpdatedAt time.Time
}

func toPayload(rec *SessionRecord) sessionPayload {
	return sessionPayload{
		ID:        rec.ID,
		Step:      rec.State.Step,
		Payment:   rec.State.Payment,
		Billing:   rec.State.Billing,
		IsLoading: rec.State.IsLoading,
		Error:     errString(rec.State.Err),
		UpdatedAt: rec.UpdatedAt,
	}
}

func fromPayload(p sessionPayload) *SessionRecord {
	rec := &SessionRecord{
		ID: p.ID,
		State: api.WizardState{
			Step:      p.Step,
			Payment:   p.Payment,
			Billing:   p.Billing,
			IsLoading: p.IsLoading,
		},
		UpdatedAt: p.UpdatedAt,
	}
	if p.Error != "" {
		rec.State.Err = p.Error
	}
	return rec
}

func errString(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case error:
		return e.Error()
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}

// EncodeRecord serializes a SessionRecord using encoding/gob.
func EncodeRecord(rec *SessionRecord) ([]byte, error) {
	payload := toPayload(rec)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRecord deserializes a SessionRecord produced by EncodeRecord.
func DecodeRecord(data []byte) (*SessionRecord, error) {
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}
	var payload sessionPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, err
	}
	return fromPayload(payload), nil
}
