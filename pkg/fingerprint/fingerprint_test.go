package fingerprint_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/joincivil/civil-content-registry/pkg/fingerprint"
)

const (
	// sha256("hello world")
	helloWorldHash = "0xb94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
)

func TestFromText(t *testing.T) {
	fp := fingerprint.FromText("hello world")
	if fp.Hex() != helloWorldHash {
		t.Errorf("Wrong fingerprint: %v", fp.Hex())
	}
	if fingerprint.FromText("hello world!") == fp {
		t.Errorf("Different text should not produce the same fingerprint")
	}
}

func TestFromReaderMatchesFromBytes(t *testing.T) {
	data := bytes.Repeat([]byte("civil"), 10000)
	fp, err := fingerprint.FromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Should not have failed to read: err: %v", err)
	}
	if fp != fingerprint.FromBytes(data) {
		t.Errorf("Reader and bytes fingerprints should match")
	}
}

func TestHeadlineDeterministic(t *testing.T) {
	published := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	est := published.In(time.FixedZone("EST", -5*3600))
	fp1 := fingerprint.Headline("Transit budget approved", "metro-daily", published)
	fp2 := fingerprint.Headline("Transit budget approved", "metro-daily", est)
	if fp1 != fp2 {
		t.Errorf("Same instant in a different zone should produce the same fingerprint")
	}
	expected := fingerprint.FromText("Transit budget approved|metro-daily|2024-03-05T14:30:00Z")
	if fp1 != expected {
		t.Errorf("Wrong headline fingerprint: %v", fp1.Hex())
	}
	if fingerprint.Headline("Transit budget approved", "other-source", published) == fp1 {
		t.Errorf("Different source should produce a different fingerprint")
	}
}

func TestParse(t *testing.T) {
	fp, err := fingerprint.Parse(helloWorldHash)
	if err != nil {
		t.Fatalf("Should have parsed: err: %v", err)
	}
	if fp != fingerprint.FromText("hello world") {
		t.Errorf("Wrong parsed fingerprint: %v", fp.Hex())
	}
	_, err = fingerprint.Parse("0x1234")
	if err == nil {
		t.Errorf("Should have failed on a short fingerprint")
	}
	_, err = fingerprint.Parse("not hex")
	if err == nil {
		t.Errorf("Should have failed on non hex")
	}
}
