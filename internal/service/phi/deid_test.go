package phi

import (
	"strings"
	"testing"
)

func TestDeidentify(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         string
		wantRedacted bool
	}{
		{
			name:         "Empty input",
			text:         "",
			want:         "",
			wantRedacted: false,
		},
		{
			name:         "No identifiers",
			text:         "takes 20mg daily with food",
			want:         "takes 20mg daily with food",
			wantRedacted: false,
		},
		{
			name:         "Name and SSN, medication preserved",
			text:         "Patient John Smith, SSN 123-45-6789, takes Lipitor 20mg daily",
			want:         "[REDACTED_NAME], SSN [REDACTED_SSN], takes Lipitor 20mg daily",
			wantRedacted: true,
		},
		{
			name:         "Phone numbers both shapes",
			text:         "call 555-123-4567 or (555) 123-4567",
			want:         "call [REDACTED_PHONE] or [REDACTED_PHONE]",
			wantRedacted: true,
		},
		{
			name:         "Email",
			text:         "contact jane.doe@example.org for results",
			want:         "contact [REDACTED_EMAIL] for results",
			wantRedacted: true,
		},
		{
			name:         "Labeled identifiers keep their class",
			text:         "MRN: 445566 and Patient ID 9912",
			want:         "[REDACTED_MRN] and [REDACTED_PATIENT_ID]",
			wantRedacted: true,
		},
		{
			name:         "Account and record numbers",
			text:         "Acct #7788 under Record no. 42",
			want:         "[REDACTED_ID] under [REDACTED_ID]",
			wantRedacted: true,
		},
		{
			name:         "Street address",
			text:         "lives at 12 Maple Street since 2019",
			want:         "lives at [REDACTED_ADDRESS] since 2019",
			wantRedacted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, redacted := Deidentify(tt.text)
			if got != tt.want {
				t.Errorf("Deidentify mismatch.\nExpected: %q\nGot:      %q", tt.want, got)
			}
			if redacted != tt.wantRedacted {
				t.Errorf("redacted = %v, want %v", redacted, tt.wantRedacted)
			}
		})
	}
}

func TestDeidentify_Idempotent(t *testing.T) {
	inputs := []string{
		"Patient John Smith, SSN 123-45-6789, takes Lipitor 20mg daily",
		"MRN: 1234 at 42 Oak Avenue, email bob@x.io, phone 555-000-1111",
		"no identifiers here",
		"Mary Ann Jones saw Robert Brown",
	}

	for _, in := range inputs {
		once, _ := Deidentify(in)
		twice, again := Deidentify(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
		if strings.Contains(once, "REDACTED") && again {
			t.Errorf("second pass reported redactions for %q", in)
		}
	}
}
