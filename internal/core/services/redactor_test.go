package services

import (
	"testing"
)

func TestRedactor_MixedPII(t *testing.T) {
	r := NewRedactor()
	input := "Email admin@ex.co, phone 555-1234, api_key: sk_live_abcdefghijklmnop"

	record := r.Mask(input)

	if len(record.Mappings) != 3 {
		t.Fatalf("expected 3 mappings, got %d: %#v", len(record.Mappings), record.Mappings)
	}
	for _, placeholder := range []string{"[EMAIL_REDACTED_1]", "[PHONE_REDACTED_1]", "[API_KEY_REDACTED_1]"} {
		if _, ok := record.Mappings[placeholder]; !ok {
			t.Errorf("expected placeholder %s in masked text %q", placeholder, record.MaskedText)
		}
	}
	if record.Mappings["[API_KEY_REDACTED_1]"] != "sk_live_abcdefghijklmnop" {
		t.Errorf("unexpected api key value: %q", record.Mappings["[API_KEY_REDACTED_1]"])
	}
	want := "Email [EMAIL_REDACTED_1], phone [PHONE_REDACTED_1], api_key: [API_KEY_REDACTED_1]"
	if record.MaskedText != want {
		t.Errorf("expected %q, got %q", want, record.MaskedText)
	}
}

func TestRedactor_RoundTrip(t *testing.T) {
	r := NewRedactor()
	inputs := []string{
		"Email admin@ex.co, phone 555-1234, api_key: sk_live_abcdefghijklmnop",
		"password: hunter2222 is not secure",
		"nothing sensitive here",
		"",
	}

	for _, input := range inputs {
		record := r.Mask(input)
		restored := r.Restore(record.MaskedText, record.Mappings)
		if restored != input {
			t.Errorf("round trip failed for %q: got %q", input, restored)
		}
	}
}

func TestRedactor_PerCategoryCounters(t *testing.T) {
	r := NewRedactor()
	input := "contact a@b.com or c@d.com"

	record := r.Mask(input)
	if record.MaskedText != "contact [EMAIL_REDACTED_1] or [EMAIL_REDACTED_2]" {
		t.Errorf("expected sequential per-category counters, got %q", record.MaskedText)
	}
}

func TestRedactor_PasswordPrefixRetained(t *testing.T) {
	r := NewRedactor()
	input := "password: correcthorsebattery"

	record := r.Mask(input)
	if record.MaskedText != "password: [PASSWORD_REDACTED_1]" {
		t.Errorf("expected prefix retained, got %q", record.MaskedText)
	}
	if record.Mappings["[PASSWORD_REDACTED_1]"] != "correcthorsebattery" {
		t.Errorf("unexpected password value: %q", record.Mappings["[PASSWORD_REDACTED_1]"])
	}
}

func TestRedactor_EmptyInput(t *testing.T) {
	r := NewRedactor()
	record := r.Mask("")
	if record.MaskedText != "" {
		t.Errorf("expected empty masked text, got %q", record.MaskedText)
	}
	if len(record.Mappings) != 0 {
		t.Errorf("expected no mappings, got %d", len(record.Mappings))
	}
}
