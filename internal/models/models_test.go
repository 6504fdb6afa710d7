package models

import (
	"encoding/json"
	"testing"
)

func TestJSONBMarshal(t *testing.T) {
	j := JSONB{
		"step":  "transcribing",
		"retry": float64(2),
	}

	data, err := j.Value()
	if err != nil {
		t.Fatalf("failed to marshal JSONB: %v", err)
	}

	if data == nil {
		t.Fatal("expected non-nil data")
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data.([]byte), &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["step"] != "transcribing" {
		t.Errorf("expected step=transcribing, got %v", result["step"])
	}
}

func TestJSONBScan(t *testing.T) {
	jsonData := []byte(`{"step": "detecting_scenes", "retries": 2}`)

	var j JSONB
	if err := j.Scan(jsonData); err != nil {
		t.Fatalf("failed to scan: %v", err)
	}

	if j["step"] != "detecting_scenes" {
		t.Errorf("expected step=detecting_scenes, got %v", j["step"])
	}

	if j["retries"].(float64) != 2 {
		t.Errorf("expected retries=2, got %v", j["retries"])
	}
}

func TestWordListRoundTrip(t *testing.T) {
	words := WordList{
		{Word: "hey", StartS: 1.0, EndS: 1.2, Confidence: 1.0},
		{Word: "wait", StartS: 1.3, EndS: 1.6, Confidence: 1.0},
	}

	raw, err := words.Value()
	if err != nil {
		t.Fatalf("failed to marshal word list: %v", err)
	}

	var scanned WordList
	if err := scanned.Scan(raw.([]byte)); err != nil {
		t.Fatalf("failed to scan word list: %v", err)
	}

	if len(scanned) != 2 {
		t.Fatalf("expected 2 words, got %d", len(scanned))
	}
	if scanned[0].Word != "hey" || scanned[1].Word != "wait" {
		t.Errorf("words did not round-trip in order: %+v", scanned)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("expected %s to be terminal", status)
		}
	}

	nonTerminal := []JobStatus{JobStatusPending, JobStatusProcessing}
	for _, status := range nonTerminal {
		if status.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", status)
		}
	}
}

func TestAspectSanitized(t *testing.T) {
	cases := map[Aspect]string{
		Aspect9x16: "9x16",
		Aspect1x1:  "1x1",
		Aspect4x5:  "4x5",
	}
	for in, want := range cases {
		if got := in.Sanitized(); got != want {
			t.Errorf("%s.Sanitized() = %s, want %s", in, got, want)
		}
	}
}
