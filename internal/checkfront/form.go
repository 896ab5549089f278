package checkfront

import (
	"encoding/json"
	"fmt"
	"io"
)

// Meta keys in booking_form_ui that are not customer fields.
var formMetaKeys = map[string]bool{
	"booking_policy": true,
	"errors":         true,
	"msg":            true,
	"mode":           true,
	"_cnf":           true,
}

type formFieldJSON struct {
	Define struct {
		Required flexBool              `json:"required"`
		Type     string                `json:"type"`
		Lbl      string                `json:"lbl"`
		Options  map[string]flexString `json:"options"`
		Layout   struct {
			Customer struct {
				Lbl      string   `json:"lbl"`
				Required flexBool `json:"required"`
			} `json:"customer"`
		} `json:"layout"`
	} `json:"define"`
}

func (j formFieldJSON) field(key string) FormField {
	f := FormField{
		Key:      key,
		Type:     j.Define.Type,
		Required: bool(j.Define.Required) || bool(j.Define.Layout.Customer.Required),
	}
	if f.Type == "" {
		f.Type = "text"
	}
	switch {
	case j.Define.Layout.Customer.Lbl != "":
		f.Label = j.Define.Layout.Customer.Lbl
	case j.Define.Lbl != "":
		f.Label = j.Define.Lbl
	default:
		f.Label = key
	}
	if len(j.Define.Options) > 0 {
		f.Options = make(map[string]string, len(j.Define.Options))
		for k, v := range j.Define.Options {
			f.Options[k] = string(v)
		}
	}
	return f
}

// parseBookingForm extracts the ordered customer fields from a
// booking/form response. booking_form_ui is a JSON object whose key order
// is the field order, so it is walked with a token decoder rather than
// unmarshalled into a map.
func parseBookingForm(r io.Reader) ([]FormField, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("checkfront: parse booking form: %w", err)
		}
		key, _ := tok.(string)
		if key != "booking_form_ui" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("checkfront: parse booking form: %w", err)
			}
			continue
		}
		return parseFormUI(dec)
	}
	return nil, fmt.Errorf("checkfront: booking form response has no booking_form_ui")
}

func parseFormUI(dec *json.Decoder) ([]FormField, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var fields []FormField
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("checkfront: parse booking form: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("checkfront: parse booking form: unexpected token %v", tok)
		}

		if formMetaKeys[key] || seen[key] {
			// Meta values are not field objects; skip without decoding.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("checkfront: parse booking form: %w", err)
			}
			continue
		}
		seen[key] = true

		var raw formFieldJSON
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("checkfront: parse booking form field %q: %w", key, err)
		}

		f := raw.field(key)
		if f.Type == "hidden" {
			continue
		}
		fields = append(fields, f)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("checkfront: parse booking form: %w", err)
	}
	return fields, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("checkfront: parse booking form: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("checkfront: parse booking form: expected %q, got %v", want, tok)
	}
	return nil
}
