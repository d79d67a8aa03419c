package models

import "testing"

// TestStatepointIDDeterministic verifies that job identity does not
// depend on map iteration order or construction order.
func TestStatepointIDDeterministic(t *testing.T) {
	a := map[string]interface{}{"a": 1, "b": 2, "nested": map[string]interface{}{"x": "y", "z": []interface{}{1, 2}}}
	b := map[string]interface{}{"nested": map[string]interface{}{"z": []interface{}{1, 2}, "x": "y"}, "b": 2, "a": 1}

	idA, err := StatepointID(a)
	if err != nil {
		t.Fatalf("StatepointID: %v", err)
	}
	for i := 0; i < 20; i++ {
		idB, err := StatepointID(b)
		if err != nil {
			t.Fatalf("StatepointID: %v", err)
		}
		if idA != idB {
			t.Fatalf("identity not stable: %s != %s", idA, idB)
		}
	}
}

func TestStatepointIDDistinguishesValues(t *testing.T) {
	id1, _ := StatepointID(map[string]interface{}{"a": 0})
	id2, _ := StatepointID(map[string]interface{}{"a": 1})
	if id1 == id2 {
		t.Error("different statepoints produced the same id")
	}
}

func TestJobWithoutAccessor(t *testing.T) {
	job, err := NewJob(map[string]interface{}{"a": 1}, nil)
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if _, _, err := job.Doc("anything"); err == nil {
		t.Error("expected error reading document with no accessor bound")
	}
	if err := job.SetDoc("anything", true); err == nil {
		t.Error("expected error writing document with no accessor bound")
	}
}

func TestSPInt(t *testing.T) {
	job, _ := NewJob(map[string]interface{}{"i": 3, "f": float64(4), "s": "x"}, nil)
	if v, ok := job.SPInt("i"); !ok || v != 3 {
		t.Errorf("SPInt(i) = %d, %v", v, ok)
	}
	if v, ok := job.SPInt("f"); !ok || v != 4 {
		t.Errorf("SPInt(f) = %d, %v", v, ok)
	}
	if _, ok := job.SPInt("s"); ok {
		t.Error("SPInt(s) should not parse a string")
	}
	if _, ok := job.SPInt("missing"); ok {
		t.Error("SPInt(missing) should report absence")
	}
}
