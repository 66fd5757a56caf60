package token

import "testing"

func TestOpNameValid(t *testing.T) {
	valid := []OpName{OpEqual, OpInsert, OpDelete, OpReplace}
	for _, n := range valid {
		if !n.Valid() {
			t.Errorf("%q.Valid() = false, want true", n)
		}
	}
	if OpName("move").Valid() {
		t.Error(`"move".Valid() = true, want false`)
	}
}
