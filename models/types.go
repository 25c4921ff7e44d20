package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TemplateItem is one service line a recurring template stamps onto
// every generated ticket. Overrides, when present, win over the
// service's catalog defaults.
type TemplateItem struct {
	ServiceID           uuid.UUID `json:"service_id"`
	Quantity            int64     `json:"quantity"`
	PriceOverrideCents  *int64    `json:"price_override_cents,omitempty"`
	DurationOverrideMin *int      `json:"duration_override_min,omitempty"`
}

// TemplateItems stores the item list as a JSON column.
type TemplateItems []TemplateItem

func (t TemplateItems) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]TemplateItem(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TemplateItems) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TemplateItems", value)
	}
	if len(b) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(b, (*[]TemplateItem)(t))
}
