package record

import (
	"testing"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/token"
)

func int64p(v int64) *int64 { return &v }

func TestUserMetaKey(t *testing.T) {
	tests := []struct {
		name string
		user *UserMeta
		want string
	}{
		{"nil", nil, ""},
		{"registered", &UserMeta{ID: int64p(7)}, "id:7"},
		{"anonymous", &UserMeta{Text: "10.0.0.1"}, "ip:10.0.0.1"},
		{"empty", &UserMeta{}, ""},
		{"id takes priority over text", &UserMeta{ID: int64p(1), Text: "10.0.0.1"}, "id:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevisionRecordMeta(t *testing.T) {
	r := &RevisionRecord{ID: 5, User: &UserMeta{ID: int64p(9)}}
	m := r.Meta()
	if m.ID != 5 || m.UserKey != "id:9" {
		t.Errorf("Meta() = %+v, want ID=5 UserKey=id:9", m)
	}
}

func TestDropTextAndDropDiff(t *testing.T) {
	text := "hello"
	r := RevisionRecord{Text: &text, Diff: &DiffDoc{Ops: []*token.OpDoc{{}}}}

	stripped := r.DropText()
	if stripped.Text != nil {
		t.Error("DropText should clear Text on its return value")
	}
	if r.Text == nil {
		t.Error("DropText must not mutate the original record (value receiver)")
	}

	strippedDiff := r.DropDiff()
	if strippedDiff.Diff != nil {
		t.Error("DropDiff should clear Diff")
	}
}

func TestDropTokens(t *testing.T) {
	b := PersistenceBlock{Tokens: []TokenStat{{Text: "x"}}}
	stripped := b.DropTokens()
	if stripped.Tokens != nil {
		t.Error("DropTokens should clear Tokens")
	}
	if b.Tokens == nil {
		t.Error("DropTokens must not mutate the original value")
	}
}

func TestOpToOpDocInsert(t *testing.T) {
	op := &token.Operation{Name: token.OpInsert, InsertedTokens: []*token.Token{token.New("a"), token.New("b")}}
	doc := OpToOpDoc(op)
	if len(doc.Tokens) != 2 || doc.Tokens[0] != "a" || doc.Tokens[1] != "b" {
		t.Errorf("Tokens = %v, want [a b]", doc.Tokens)
	}
}

func TestOpToOpDocDeleteUsesRemovedTokens(t *testing.T) {
	op := &token.Operation{Name: token.OpDelete, RemovedTokens: []*token.Token{token.New("gone")}}
	doc := OpToOpDoc(op)
	if len(doc.Tokens) != 1 || doc.Tokens[0] != "gone" {
		t.Errorf("Tokens = %v, want [gone]", doc.Tokens)
	}
}

func TestOpToOpDocEqualCarriesNoTokens(t *testing.T) {
	op := &token.Operation{Name: token.OpEqual, A1: 0, A2: 3, B1: 0, B2: 3}
	doc := OpToOpDoc(op)
	if doc.Tokens != nil {
		t.Errorf("Tokens = %v, want nil for an equal span", doc.Tokens)
	}
}

func TestNormalizeDocMapsContributorToUser(t *testing.T) {
	r := RevisionRecord{Contributor: &ContributorMeta{ID: int64p(9), UserText: "Alice"}}
	out := NormalizeDoc(r)
	if out.User == nil || out.User.ID == nil || *out.User.ID != 9 || out.User.Text != "Alice" {
		t.Errorf("User = %+v, want {ID:9 Text:Alice}", out.User)
	}
	if out.Contributor != nil {
		t.Error("NormalizeDoc should clear Contributor once it's been mapped")
	}
}

func TestNormalizeDocNoContributorPassesThrough(t *testing.T) {
	r := RevisionRecord{User: &UserMeta{ID: int64p(3)}}
	out := NormalizeDoc(r)
	if out.User == nil || out.User.ID == nil || *out.User.ID != 3 {
		t.Errorf("User = %+v, want unchanged {ID:3}", out.User)
	}
}
