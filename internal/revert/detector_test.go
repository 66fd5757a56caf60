package revert

import "testing"

func TestProcessFirstOccurrenceIsNotRevert(t *testing.T) {
	d := NewDetector(5)
	if r := d.Process("abc", "v1"); r != nil {
		t.Errorf("first occurrence of a checksum should not be a revert, got %v", r)
	}
}

func TestProcessRepeatedChecksumIsRevert(t *testing.T) {
	d := NewDetector(5)
	d.Process("abc", "v1")
	r := d.Process("xyz", "v2")
	if r != nil {
		t.Fatalf("distinct checksum should not be a revert, got %v", r)
	}
	r = d.Process("abc", "v3")
	if r == nil {
		t.Fatal("repeated checksum within radius should be a revert")
	}
	if r.RevertedTo != "v1" {
		t.Errorf("RevertedTo = %v, want v1", r.RevertedTo)
	}
}

func TestProcessExpiresOutsideRadius(t *testing.T) {
	d := NewDetector(2)
	d.Process("abc", "v1")
	d.Process("b", "v2")
	d.Process("c", "v3")
	// "abc" was pushed out of the window by the third revision; the radius is 2.
	r := d.Process("abc", "v4")
	if r != nil {
		t.Errorf("checksum outside the revert radius should not be detected, got %v", r)
	}
}

func TestProcessRefCountingKeepsSharedChecksumAlive(t *testing.T) {
	d := NewDetector(1)
	d.Process("abc", "v1")
	d.Process("abc", "v2") // still a revert of v1; also re-adds "abc" to the window
	r := d.Process("abc", "v3")
	if r == nil {
		t.Fatal("expected a revert: abc was touched again within the radius")
	}
	if r.RevertedTo != "v2" {
		t.Errorf("RevertedTo = %v, want v2", r.RevertedTo)
	}
}

func TestNewDetectorZeroRadiusDisablesDetection(t *testing.T) {
	d := NewDetector(0)
	d.Process("abc", "v1")
	if r := d.Process("abc", "v2"); r != nil {
		t.Errorf("zero radius should never report a revert, got %v", r)
	}
}
