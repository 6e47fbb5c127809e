package crypto

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestCanonicalizeJSON_KeyOrdering(t *testing.T) {
	input := []byte(`{"b": 1, "a": {"z": true, "y": null}, "c": [3, 2, 1]}`)
	want := []byte(`{"a":{"y":null,"z":true},"b":1,"c":[3,2,1]}`)

	actual, err := CanonicalizeJSON(input)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if !bytes.Equal(actual, want) {
		t.Fatalf("canonical = %s, want %s", actual, want)
	}
}

func TestCanonicalizeJSON_Stable(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{"digest":"abc","version":1}`),
		[]byte(`{"version": 1, "digest": "abc"}`),
	}
	var outputs [][]byte
	for _, input := range inputs {
		out, err := CanonicalizeJSON(input)
		if err != nil {
			t.Fatalf("canonicalize %s: %v", input, err)
		}
		outputs = append(outputs, out)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatalf("equivalent documents canonicalized differently: %s vs %s", outputs[0], outputs[1])
	}
}

// Appends build payloads from Go values while verification re-reads them
// through encoding/json, so int and float64 forms of the same number must
// canonicalize to identical bytes.
func TestCanonicalizeAny_NumberStability(t *testing.T) {
	direct, err := CanonicalizeAny(map[string]any{"version": 1, "digest": "abc"})
	if err != nil {
		t.Fatalf("canonicalize direct: %v", err)
	}

	var roundTripped map[string]any
	if err := json.Unmarshal(direct, &roundTripped); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	again, err := CanonicalizeAny(roundTripped)
	if err != nil {
		t.Fatalf("canonicalize round-tripped: %v", err)
	}
	if !bytes.Equal(direct, again) {
		t.Fatalf("round trip changed canonical bytes: %s vs %s", direct, again)
	}
}

func TestCanonicalizeJSON_RejectsInvalid(t *testing.T) {
	if _, err := CanonicalizeJSON([]byte(`{"a":`)); err == nil {
		t.Fatal("expected error for truncated json")
	}
}
