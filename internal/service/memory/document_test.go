package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleNote = `Discharge Note

Medications: Lisinopril
Metformin 500 mg twice daily with meals
Diagnosis: type 2 diabetes
Allergic to: penicillin
Blood Pressure: 130/85
Glucose: 95 mg/dL
A1C: 6.4
`

func TestExtractDocumentContext(t *testing.T) {
	cands := extractDocumentContext(sampleNote)

	byKey := map[string]candidate{}
	for _, c := range cands {
		byKey[c.Key] = c
	}

	med, ok := byKey["medication_metformin"]
	require.True(t, ok, "metformin not extracted: %+v", cands)
	require.Equal(t, "medications", med.Category)
	var medVal map[string]string
	require.NoError(t, json.Unmarshal([]byte(med.Value), &medVal))
	require.Equal(t, "500", medVal["dosage"])
	require.Equal(t, "mg", medVal["unit"])
	require.Equal(t, "twice daily", medVal["frequency"])

	labeled, ok := byKey["medication_lisinopril"]
	require.True(t, ok, "labeled medication not extracted: %+v", cands)
	require.Equal(t, "medications", labeled.Category)

	cond, ok := byKey["condition_type_2_diabetes"]
	require.True(t, ok, "condition not extracted: %+v", cands)
	require.Equal(t, "conditions", cond.Category)

	allergy, ok := byKey["allergy_penicillin"]
	require.True(t, ok, "allergy not extracted: %+v", cands)
	require.Equal(t, "allergies", allergy.Category)

	bp, ok := byKey["vital_blood_pressure"]
	require.True(t, ok, "blood pressure not extracted: %+v", cands)
	require.Equal(t, "vitals", bp.Category)
	var bpVal map[string]string
	require.NoError(t, json.Unmarshal([]byte(bp.Value), &bpVal))
	require.Equal(t, "130/85", bpVal["value"])

	glucose, ok := byKey["lab_glucose"]
	require.True(t, ok, "glucose lab not extracted: %+v", cands)
	require.Equal(t, "labs", glucose.Category)

	a1c, ok := byKey["lab_a1c"]
	require.True(t, ok, "a1c lab not extracted: %+v", cands)
	require.Equal(t, "labs", a1c.Category)
}

func TestExtractDocumentContext_LabValuesAreNotMedications(t *testing.T) {
	cands := extractDocumentContext("Glucose 95 mg/dL, cholesterol 180 mg/dL")
	for _, c := range cands {
		require.NotEqual(t, "medications", c.Category, "lab value extracted as medication: %+v", c)
	}
}

func TestExtractDocumentContext_RepeatedMentionsCollapse(t *testing.T) {
	text := "Metformin 500 mg daily. Continue Metformin 500 mg daily."
	cands := extractDocumentContext(text)

	meds := 0
	for _, c := range cands {
		if c.Category == "medications" {
			meds++
		}
	}
	require.Equal(t, 1, meds)
}

func TestExtractDocumentContext_NoKnownAllergiesSkipped(t *testing.T) {
	cands := extractDocumentContext("Allergies: no known allergies")
	for _, c := range cands {
		require.NotEqual(t, "allergies", c.Category)
	}
}

func TestExtractDocumentContext_Empty(t *testing.T) {
	require.Empty(t, extractDocumentContext(""))
	require.Empty(t, extractDocumentContext("nothing clinical in here"))
}

func TestLearnFromDocument(t *testing.T) {
	repo := newFakeRepo()
	store := NewStore(repo)
	ctx := context.Background()

	learned := store.LearnFromDocument(ctx, "u1", "note-1", sampleNote)
	require.Greater(t, learned, 4)

	facts, err := repo.ListFacts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, learned)

	cats := map[string]bool{}
	for _, f := range facts {
		cats[f.Category] = true
		require.Equal(t, "document:note-1", f.Source)
		require.InDelta(t, DefaultBaseConfidence, f.Confidence, 1e-9)
	}
	for _, want := range []string{"medications", "conditions", "allergies", "vitals", "labs"} {
		require.True(t, cats[want], "category %s never populated", want)
	}

	// The same note seen again boosts instead of duplicating.
	again := store.LearnFromDocument(ctx, "u1", "note-1", sampleNote)
	require.Equal(t, learned, again)

	facts, err = repo.ListFacts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, learned)
	for _, f := range facts {
		require.InDelta(t, DefaultBaseConfidence+ConfidenceBoost, f.Confidence, 1e-9)
	}
}
