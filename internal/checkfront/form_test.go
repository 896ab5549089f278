package checkfront

import (
	"strings"
	"testing"
)

func TestParseBookingFormPreservesOrder(t *testing.T) {
	body := `{
		"request":{"status":"OK"},
		"booking_form_ui":{
			"customer_name":{"define":{"required":true,"layout":{"customer":{"lbl":"Full Name"}}}},
			"customer_email":{"define":{"required":1,"type":"email","lbl":"Email"}},
			"customer_phone":{"define":{"required":"1","type":"tel","lbl":"Phone"}},
			"customer_note":{"define":{"required":0,"lbl":"Note"}}
		}
	}`
	fields, err := parseBookingForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseBookingForm: %v", err)
	}
	wantKeys := []string{"customer_name", "customer_email", "customer_phone", "customer_note"}
	if len(fields) != len(wantKeys) {
		t.Fatalf("got %d fields, want %d", len(fields), len(wantKeys))
	}
	for i, key := range wantKeys {
		if fields[i].Key != key {
			t.Errorf("fields[%d].Key = %q, want %q", i, fields[i].Key, key)
		}
	}
	if fields[0].Label != "Full Name" {
		t.Errorf("customer layout label should win, got %q", fields[0].Label)
	}
	if !fields[0].Required || !fields[1].Required || !fields[2].Required {
		t.Error("required flags 'true', 1 and \"1\" should all parse as required")
	}
	if fields[3].Required {
		t.Error("required 0 should parse as optional")
	}
	if fields[1].Type != "email" || fields[2].Type != "tel" {
		t.Error("explicit types should be kept")
	}
	if fields[0].Type != "text" {
		t.Errorf("missing type defaults to text, got %q", fields[0].Type)
	}
}

func TestParseBookingFormSkipsMetaAndHidden(t *testing.T) {
	body := `{"booking_form_ui":{
		"booking_policy":{"define":{"lbl":"Policy"}},
		"errors":[],
		"msg":"",
		"mode":"edit",
		"_cnf":{"define":{}},
		"customer_ref":{"define":{"type":"hidden"}},
		"customer_name":{"define":{"lbl":"Name"}},
		"customer_name":{"define":{"lbl":"Name Again"}}
	}}`
	fields, err := parseBookingForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseBookingForm: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("got %d fields, want 1: %+v", len(fields), fields)
	}
	if fields[0].Key != "customer_name" || fields[0].Label != "Name" {
		t.Errorf("first occurrence of a duplicate key wins, got %+v", fields[0])
	}
}

func TestParseBookingFormLabelFallback(t *testing.T) {
	body := `{"booking_form_ui":{
		"party_size":{"define":{}}
	}}`
	fields, err := parseBookingForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseBookingForm: %v", err)
	}
	if fields[0].Label != "party_size" {
		t.Errorf("label should fall back to the key, got %q", fields[0].Label)
	}
}

func TestParseBookingFormSelectOptions(t *testing.T) {
	body := `{"booking_form_ui":{
		"customer_country":{"define":{"type":"select","lbl":"Country","options":{"SG":"Singapore","MY":"Malaysia"}}}
	}}`
	fields, err := parseBookingForm(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parseBookingForm: %v", err)
	}
	if fields[0].Type != "select" {
		t.Errorf("Type = %q", fields[0].Type)
	}
	if fields[0].Options["SG"] != "Singapore" || fields[0].Options["MY"] != "Malaysia" {
		t.Errorf("Options = %v", fields[0].Options)
	}
}

func TestParseBookingFormMissingSection(t *testing.T) {
	if _, err := parseBookingForm(strings.NewReader(`{"request":{"status":"OK"}}`)); err == nil {
		t.Error("expected error when booking_form_ui is absent")
	}
}
