package token

import "testing"

func TestTokenizeRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"hello world",
		"Hello, World! This is [[a link]].",
		"line one\nline two\r\nline three",
		"tabs\tand   spaces",
	}
	for _, text := range tests {
		toks := Tokenize(text)
		var tokens []*Token
		for _, s := range toks {
			tokens = append(tokens, New(s))
		}
		if got := Texts(tokens); got != text {
			t.Errorf("Tokenize(%q) round-trip = %q, want %q", text, got, text)
		}
	}
}

func TestTokenizeWordSplit(t *testing.T) {
	got := Tokenize("foo bar")
	want := []string{"foo", " ", "bar"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize(%q) = %v, want %v", "foo bar", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize(%q)[%d] = %q, want %q", "foo bar", i, got[i], want[i])
		}
	}
}

func TestPersistIsIdempotentPerRevision(t *testing.T) {
	tok := New("x")
	tok.Persist(1)
	tok.Persist(1)
	tok.Persist(2)

	if len(tok.Revisions) != 2 {
		t.Fatalf("Revisions = %v, want 2 entries", tok.Revisions)
	}
	if tok.Revisions[0] != 1 || tok.Revisions[1] != 2 {
		t.Errorf("Revisions = %v, want [1 2]", tok.Revisions)
	}
}

func TestSetIdentityNotValue(t *testing.T) {
	a := New("same")
	b := New("same")

	s := NewSet()
	if !s.Add(a) {
		t.Fatal("Add(a) on empty set should return true")
	}
	if !s.Add(b) {
		t.Fatal("Add(b) should return true: distinct instance with equal text must not collide")
	}
	if s.Add(a) {
		t.Error("Add(a) a second time should return false")
	}
	if !s.Contains(a) || !s.Contains(b) {
		t.Error("set should contain both distinct instances")
	}
}

func TestContainsIdentity(t *testing.T) {
	a := New("x")
	b := New("x")
	haystack := []*Token{a}

	if !ContainsIdentity(haystack, a) {
		t.Error("expected haystack to contain a by identity")
	}
	if ContainsIdentity(haystack, b) {
		t.Error("b has equal text but is a distinct instance, should not be found")
	}
}

func TestTextsSliceEmpty(t *testing.T) {
	if got := TextsSlice(nil); got != nil {
		t.Errorf("TextsSlice(nil) = %v, want nil", got)
	}
	if got := TextsSlice([]*Token{}); got != nil {
		t.Errorf("TextsSlice(empty) = %v, want nil", got)
	}
}

func TestTextsSlice(t *testing.T) {
	toks := []*Token{New("a"), New("b"), New("c")}
	got := TextsSlice(toks)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TextsSlice()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
