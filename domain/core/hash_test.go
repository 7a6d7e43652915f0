package core

import "testing"

func TestComputeParamsHash_OrderIndependent(t *testing.T) {
	a := ComputeParamsHash(map[string]interface{}{"n_splits": 10, "test_size": 0.25})
	b := ComputeParamsHash(map[string]interface{}{"test_size": 0.25, "n_splits": 10})
	if a != b {
		t.Errorf("Expected identical hashes, got %s and %s", a, b)
	}

	c := ComputeParamsHash(map[string]interface{}{"n_splits": 11, "test_size": 0.25})
	if a == c {
		t.Error("Expected different hashes for different params")
	}
}

func TestComputeDatasetHash(t *testing.T) {
	h1 := ComputeDatasetHash([]string{"a", "b"}, []string{"x", "y"})
	h2 := ComputeDatasetHash([]string{"a", "b"}, []string{"x", "y"})
	h3 := ComputeDatasetHash([]string{"a", "b"}, []string{"y", "x"})

	if h1 != h2 {
		t.Errorf("Same dataset hashed differently: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Error("Relabeled dataset produced the same hash")
	}
	if len(Hash(h1).Short()) != 12 {
		t.Errorf("Short hash should have 12 characters, got %q", Hash(h1).Short())
	}
}
