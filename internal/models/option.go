package models

import (
	"encoding/json"
)

// OptionValue is the canonical form of the heterogeneous answer/option shapes
// the upstream platform emits: a plain string or number, a labeled object
// carrying some of {text, label, value, _id}, or an array of either. Shapes
// are resolved once here, at the JSON boundary, instead of scattering
// shape-sniffing through the rest of the code.
type OptionValue struct {
	// Primitive holds the scalar form. Empty when Labeled or Collection is set.
	Primitive string

	// Labeled holds the object form, when present.
	Labeled *LabeledOption

	// Collection holds the array form, when present.
	Collection []OptionValue
}

type LabeledOption struct {
	Text  string `json:"text,omitempty"`
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
	ID    string `json:"_id,omitempty"`

	// raw keeps the original object bytes for the stable-serialization
	// fallback when none of the known fields are populated.
	raw json.RawMessage
}

// IsZero reports whether the value carries no answer at all.
func (v OptionValue) IsZero() bool {
	return v.Primitive == "" && v.Labeled == nil && v.Collection == nil
}

func (v OptionValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Collection != nil:
		return json.Marshal(v.Collection)
	case v.Labeled != nil:
		if len(v.Labeled.raw) > 0 {
			return v.Labeled.raw, nil
		}
		type alias LabeledOption
		return json.Marshal((*alias)(v.Labeled))
	default:
		return json.Marshal(v.Primitive)
	}
}

func (v *OptionValue) UnmarshalJSON(data []byte) error {
	*v = DecodeOptionValue(data)
	return nil
}

// DecodeOptionValue never fails: any JSON value maps to some OptionValue.
// null and undecodable input map to the zero value, which normalizes to "".
func DecodeOptionValue(data []byte) OptionValue {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return OptionValue{}
	}
	return optionValueFrom(probe, data)
}

func optionValueFrom(probe interface{}, raw json.RawMessage) OptionValue {
	switch val := probe.(type) {
	case nil:
		return OptionValue{}
	case string:
		return OptionValue{Primitive: val}
	case float64:
		return OptionValue{Primitive: formatNumber(val)}
	case bool:
		if val {
			return OptionValue{Primitive: "true"}
		}
		return OptionValue{Primitive: "false"}
	case []interface{}:
		items := make([]OptionValue, len(val))
		for i, item := range val {
			b, _ := json.Marshal(item)
			items[i] = optionValueFrom(item, b)
		}
		return OptionValue{Collection: items}
	case map[string]interface{}:
		labeled := &LabeledOption{raw: append(json.RawMessage(nil), raw...)}
		labeled.Text = stringField(val, "text")
		labeled.Label = stringField(val, "label")
		labeled.Value = stringField(val, "value")
		labeled.ID = stringField(val, "_id")
		if labeled.ID == "" {
			labeled.ID = stringField(val, "id")
		}
		return OptionValue{Labeled: labeled}
	default:
		b, _ := json.Marshal(probe)
		return OptionValue{Primitive: string(b)}
	}
}

func stringField(obj map[string]interface{}, key string) string {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return ""
	}
	switch val := raw.(type) {
	case string:
		return val
	case float64:
		return formatNumber(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

func formatNumber(f float64) string {
	// JSON numbers round-trip through encoding/json so "7" stays "7" and
	// "7.5" stays "7.5" instead of picking up exponent notation.
	b, _ := json.Marshal(f)
	return string(b)
}

// StableSerialization is the last-resort normal form for labeled objects with
// none of the known display fields set.
func (o *LabeledOption) StableSerialization() string {
	if len(o.raw) > 0 {
		var compact interface{}
		if err := json.Unmarshal(o.raw, &compact); err == nil {
			// Re-marshal for key-sorted, whitespace-free output.
			if b, err := json.Marshal(compact); err == nil {
				return string(b)
			}
		}
		return string(o.raw)
	}
	b, _ := json.Marshal(o)
	return string(b)
}
