package testkit

import (
	"testing"

	"vaeval/domain/va"
)

func TestVADataGenerator_Basic(t *testing.T) {
	X, y, err := NewVADataGenerator(DefaultVAConfig()).Generate()
	if err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}

	if X.Len() != 100 || y.Len() != 100 {
		t.Fatalf("Expected 100 rows, got %d features and %d labels", X.Len(), y.Len())
	}
	if len(X.Columns) != 9 {
		t.Errorf("Expected 9 symptom columns, got %d", len(X.Columns))
	}
	if err := va.CheckAligned(X, y); err != nil {
		t.Errorf("Features and labels are not aligned: %v", err)
	}

	counts := y.Counts()
	if counts["cause1"] != 50 || counts["cause2"] != 30 || counts["cause3"] != 20 {
		t.Errorf("Unexpected cause counts: %v", counts)
	}
}

func TestVADataGenerator_Deterministic(t *testing.T) {
	X1, _, err := NewVADataGenerator(DefaultVAConfig()).Generate()
	if err != nil {
		t.Fatal(err)
	}
	X2, _, err := NewVADataGenerator(DefaultVAConfig()).Generate()
	if err != nil {
		t.Fatal(err)
	}
	for i := range X1.Rows {
		for j := range X1.Rows[i] {
			if X1.Rows[i][j] != X2.Rows[i][j] {
				t.Fatalf("Row %d differs between runs with the same seed", i)
			}
		}
	}
}

func TestVADataGenerator_SymptomSignal(t *testing.T) {
	X, y, err := NewVADataGenerator(DefaultVAConfig()).Generate()
	if err != nil {
		t.Fatal(err)
	}

	// s1 belongs to cause1: it should be endorsed far more often there
	own, other := 0.0, 0.0
	nOwn, nOther := 0.0, 0.0
	for i, row := range X.Rows {
		if y.Values[i] == "cause1" {
			own += row[0]
			nOwn++
		} else {
			other += row[0]
			nOther++
		}
	}
	if own/nOwn <= other/nOther {
		t.Errorf("Expected cause1 to endorse s1 more often: %.2f vs %.2f", own/nOwn, other/nOther)
	}
}

func TestVADataGenerator_ConfigMismatch(t *testing.T) {
	config := DefaultVAConfig()
	config.Counts = config.Counts[:1]
	if _, _, err := NewVADataGenerator(config).Generate(); err == nil {
		t.Error("Expected error for mismatched causes and counts")
	}
}
