package pricing

import (
	"encoding/json"
	"fmt"
	"time"
)

// Condition type tags used in the JSON envelope.
const (
	ConditionQuantityRange   = "quantity_range"
	ConditionLocationSet     = "location_set"
	ConditionColorCountRange = "color_count_range"
	ConditionDateWindow      = "date_window"
	ConditionProductType     = "product_type"
)

// Condition is the closed set of matchable predicates a rule may declare.
// The set is sealed: no condition kind can be added without extending the
// envelope switch below, so every kind is handled everywhere it must be.
type Condition interface {
	Type() string
	Matches(req Request, now time.Time) bool
	sealed()
}

// QuantityRange matches quantities in [Min, Max]; Max == 0 means unbounded.
type QuantityRange struct {
	Min int `json:"min"`
	Max int `json:"max,omitempty"`
}

func (QuantityRange) Type() string { return ConditionQuantityRange }
func (QuantityRange) sealed()      {}

func (c QuantityRange) Matches(req Request, _ time.Time) bool {
	if req.Quantity < c.Min {
		return false
	}
	return c.Max == 0 || req.Quantity <= c.Max
}

// LocationSet matches when the request covers the required locations.
// Mode "any" needs one overlap, "all" needs every required location present.
type LocationSet struct {
	Locations []Location `json:"locations"`
	Mode      string     `json:"mode"` // "any" or "all"
}

func (LocationSet) Type() string { return ConditionLocationSet }
func (LocationSet) sealed()      {}

func (c LocationSet) Matches(req Request, _ time.Time) bool {
	if len(c.Locations) == 0 {
		return true
	}
	have := make(map[Location]bool, len(req.Locations))
	for _, l := range req.Locations {
		have[l] = true
	}
	if c.Mode == "all" {
		for _, l := range c.Locations {
			if !have[l] {
				return false
			}
		}
		return true
	}
	for _, l := range c.Locations {
		if have[l] {
			return true
		}
	}
	return false
}

// ColorCountRange matches color counts in [Min, Max]; Max == 0 means unbounded.
type ColorCountRange struct {
	Min int `json:"min"`
	Max int `json:"max,omitempty"`
}

func (ColorCountRange) Type() string { return ConditionColorCountRange }
func (ColorCountRange) sealed()      {}

func (c ColorCountRange) Matches(req Request, _ time.Time) bool {
	if req.Colors < c.Min {
		return false
	}
	return c.Max == 0 || req.Colors <= c.Max
}

// DateWindow matches when the quote time falls inside [Start, End].
// A zero End leaves the window open-ended.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
}

func (DateWindow) Type() string { return ConditionDateWindow }
func (DateWindow) sealed()      {}

func (c DateWindow) Matches(_ Request, now time.Time) bool {
	if now.Before(c.Start) {
		return false
	}
	return c.End.IsZero() || !now.After(c.End)
}

// ProductType matches the requested decoration service.
type ProductType struct {
	Services []Service `json:"services"`
}

func (ProductType) Type() string { return ConditionProductType }
func (ProductType) sealed()      {}

func (c ProductType) Matches(req Request, _ time.Time) bool {
	for _, s := range c.Services {
		if s == req.Service {
			return true
		}
	}
	return false
}

// ConditionList serializes conditions as {"type": ..., ...params} envelopes.
type ConditionList []Condition

func (l ConditionList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, c := range l {
		body, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, err
		}
		m["type"] = c.Type()
		enveloped, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		out = append(out, enveloped)
	}
	return json.Marshal(out)
}

func (l *ConditionList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	conditions := make(ConditionList, 0, len(raw))
	for _, item := range raw {
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &envelope); err != nil {
			return err
		}
		var (
			c   Condition
			err error
		)
		switch envelope.Type {
		case ConditionQuantityRange:
			var v QuantityRange
			err = json.Unmarshal(item, &v)
			c = v
		case ConditionLocationSet:
			var v LocationSet
			err = json.Unmarshal(item, &v)
			c = v
		case ConditionColorCountRange:
			var v ColorCountRange
			err = json.Unmarshal(item, &v)
			c = v
		case ConditionDateWindow:
			var v DateWindow
			err = json.Unmarshal(item, &v)
			c = v
		case ConditionProductType:
			var v ProductType
			err = json.Unmarshal(item, &v)
			c = v
		default:
			return fmt.Errorf("unknown condition type %q", envelope.Type)
		}
		if err != nil {
			return fmt.Errorf("decode %s condition: %w", envelope.Type, err)
		}
		conditions = append(conditions, c)
	}
	*l = conditions
	return nil
}
