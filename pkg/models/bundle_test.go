package models

import "testing"

func TestBundleIDSingleOperation(t *testing.T) {
	b := NewBundle("proj", "", []BundleOperation{{JobID: "abc", Name: "op1", Cmd: "true"}})
	if b.ID != "proj-abc-op1" {
		t.Errorf("single-operation bundle id = %q", b.ID)
	}
}

func TestBundleIDStableUnderOrder(t *testing.T) {
	ops := []BundleOperation{
		{JobID: "j1", Name: "op1", Cmd: "a"},
		{JobID: "j2", Name: "op2", Cmd: "b"},
	}
	reversed := []BundleOperation{ops[1], ops[0]}

	b1 := NewBundle("proj", "", ops)
	b2 := NewBundle("proj", "", reversed)
	if b1.ID != b2.ID {
		t.Errorf("bundle id depends on operation order: %s != %s", b1.ID, b2.ID)
	}
}

func TestBundleIDOverride(t *testing.T) {
	b := NewBundle("proj", "custom-id", []BundleOperation{{JobID: "j", Name: "op", Cmd: "c"}})
	if b.ID != "custom-id" {
		t.Errorf("explicit id not honored: %q", b.ID)
	}
}

func TestBundleIDDistinct(t *testing.T) {
	b1 := NewBundle("proj", "", []BundleOperation{
		{JobID: "j1", Name: "op1"}, {JobID: "j2", Name: "op1"},
	})
	b2 := NewBundle("proj", "", []BundleOperation{
		{JobID: "j1", Name: "op1"}, {JobID: "j3", Name: "op1"},
	})
	if b1.ID == b2.ID {
		t.Error("bundles over different operations share an id")
	}
}
