package diffengine

import (
	"context"
	"testing"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/token"
)

func tokensOf(strs ...string) []*token.Token {
	toks := make([]*token.Token, len(strs))
	for i, s := range strs {
		toks[i] = token.New(s)
	}
	return toks
}

func textOf(toks []*token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestProcessFirstRevisionIsAllInsert(t *testing.T) {
	p := NewDMPEngine().Processor()
	ops, a, b, err := p.Process(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(a) != 0 {
		t.Errorf("a = %v, want empty baseline", a)
	}
	if len(ops) != 1 || ops[0].Name != token.OpInsert {
		t.Fatalf("ops = %+v, want single insert", ops)
	}
	if len(ops[0].InsertedTokens) != len(b) {
		t.Errorf("InsertedTokens has %d tokens, want %d", len(ops[0].InsertedTokens), len(b))
	}
}

func TestProcessEqualSpanPreservesIdentity(t *testing.T) {
	p := NewDMPEngine().Processor()
	_, _, firstB, err := p.Process(context.Background(), "the quick fox")
	if err != nil {
		t.Fatalf("Process 1: %v", err)
	}

	ops, a, b, err := p.Process(context.Background(), "the quick fox jumps")
	if err != nil {
		t.Fatalf("Process 2: %v", err)
	}
	if len(a) != len(firstB) {
		t.Fatalf("a = %v, want the previous revision's tokens", textOf(a))
	}

	var sawEqual, sawInsert bool
	for _, op := range ops {
		switch op.Name {
		case token.OpEqual:
			sawEqual = true
			for i := op.A1; i < op.A2; i++ {
				if a[i] != firstB[i] {
					t.Errorf("equal span token at %d is not the same instance as the prior revision's", i)
				}
			}
		case token.OpInsert:
			sawInsert = true
			if len(op.InsertedTokens) == 0 {
				t.Error("insert op carries no tokens")
			}
		}
	}
	if !sawEqual {
		t.Error("expected an equal span for the shared prefix")
	}
	if !sawInsert {
		t.Error("expected an insert for the appended word")
	}
	_ = b
}

func TestProcessDeleteThenInsertMergesIntoReplace(t *testing.T) {
	p := NewDMPEngine().Processor()
	if _, _, _, err := p.Process(context.Background(), "red apple"); err != nil {
		t.Fatalf("Process 1: %v", err)
	}
	ops, _, _, err := p.Process(context.Background(), "green apple")
	if err != nil {
		t.Fatalf("Process 2: %v", err)
	}

	foundReplace := false
	for _, op := range ops {
		if op.Name == token.OpReplace {
			foundReplace = true
			if len(op.InsertedTokens) == 0 || len(op.RemovedTokens) == 0 {
				t.Error("replace op must carry both inserted and removed tokens")
			}
		}
		if op.Name == token.OpDelete || op.Name == token.OpInsert {
			t.Errorf("adjacent delete/insert should have merged into replace, got %s", op.Name)
		}
	}
	if !foundReplace {
		t.Error("expected a replace operation for red -> green")
	}
}

func TestUpdateResetsBaselineWithoutDiffing(t *testing.T) {
	p := NewDMPEngine().Processor()
	forced := tokensOf("a", "b", "c")
	p.Update(forced)

	ops, a, _, err := p.Process(context.Background(), "a b c d")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(a) != 3 {
		t.Fatalf("a = %v, want the forced baseline of length 3", textOf(a))
	}
	for i := range forced {
		if a[i] != forced[i] {
			t.Errorf("baseline token %d is not the forced instance", i)
		}
	}
	var sawInsert bool
	for _, op := range ops {
		if op.Name == token.OpInsert {
			sawInsert = true
		}
	}
	if !sawInsert {
		t.Error("expected the appended word to surface as an insert")
	}
}
