// Package diffstate implements the DiffState component (spec.md §4.1): the
// incremental token-set automaton that turns each revision's text (or a
// precomputed operation list) into the revision's current token list, plus
// the tokens that entered and left since the previous revision, while
// preserving Token instance identity across equal spans and reverts.
package diffstate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mediawiki-utilities/go-mwpersistence/internal/diffengine"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/record"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/revert"
	"github.com/mediawiki-utilities/go-mwpersistence/internal/token"
)

// ErrNoDiffEngine is returned when raw text is submitted to Update but no
// diff engine was configured (spec.md §4.1, §7 ConfigError).
var ErrNoDiffEngine = errors.New("diffstate: raw text submitted without a diff engine")

// ErrUnknownOperation is returned when an operation document names a tag
// outside equal/insert/delete/replace (spec.md §7).
var ErrUnknownOperation = errors.New("diffstate: unknown operation name")

// version is the ephemeral per-revision structure stored in the revert
// detector (spec.md §3 "Version"): just the full token list as of that
// revision, shared by reference with any later revision that reverts to it.
type version struct {
	tokens []*token.Token
}

// State is the DiffState automaton for a single page. It is not safe for
// concurrent use; spec.md §5 confines one page to one goroutine.
type State struct {
	engine   diffengine.Engine
	proc     diffengine.Processor
	detector *revert.Detector

	last []*token.Token
}

// New constructs a DiffState. engine may be nil if the caller will only
// ever submit precomputed operation documents via UpdateOps. detector is
// required (spec.md §4.1 step 1: the revert detector is always queried,
// even on the raw-text path).
func New(engine diffengine.Engine, detector *revert.Detector) *State {
	s := &State{engine: engine, detector: detector}
	if engine != nil {
		s.proc = engine.Processor()
	}
	return s
}

// Result is what DiffState.Update/UpdateOps returns: the revision's full
// current token list, the tokens newly introduced and removed since the
// previous revision (spec.md §4.1 contract), and — only on the raw-text,
// non-revert path — the edit script that produced them, for callers (the
// dump2diffs stage) that need to serialize it onward.
type Result struct {
	Current  []*token.Token
	Added    []*token.Token
	Removed  []*token.Token
	Reverted bool
	Ops      []*token.Operation

	// TimedOut is set when ctx's deadline elapsed before the diff engine
	// finished, and Ops/Current/Added/Removed instead reflect the trivial
	// delete-all/insert-all substitution spec.md §5/§7 DiffTimeout mandates.
	TimedOut bool
}

// Update processes one revision's raw text. It computes the checksum,
// consults the revert detector, and either adopts a reverted-to Version's
// tokens by reference or runs the diff engine to build a fresh token set
// (spec.md §4.1 algorithm steps 1–5).
func (s *State) Update(ctx context.Context, text string, meta record.RevisionMeta) (Result, error) {
	if s.proc == nil {
		return Result{}, ErrNoDiffEngine
	}

	sum := checksum(text)
	cur := &version{}
	rev := s.detector.Process(sum, cur)

	var res Result
	if rev != nil {
		prior := rev.RevertedTo.(*version)
		cur.tokens = prior.tokens
		s.proc.Update(cur.tokens)
		res = Result{Current: cur.tokens, Added: nil, Removed: nil, Reverted: true}
	} else {
		processed, err := s.diffWithDeadline(ctx, text)
		if err != nil {
			return Result{}, err
		}
		cur.tokens = processed.Current
		res = processed
	}

	persistOnce(res.Current, meta.ID)
	s.last = cur.tokens
	return res, nil
}

// UpdateOps processes one revision given a precomputed operation document
// list and its checksum (spec.md §4.1, "Two entry modes"). No diff engine
// is required on this path.
func (s *State) UpdateOps(checksum string, ops []*token.OpDoc, meta record.RevisionMeta) (Result, error) {
	cur := &version{}
	rev := s.detector.Process(checksum, cur)

	var res Result
	if rev != nil {
		prior := rev.RevertedTo.(*version)
		cur.tokens = prior.tokens
		if s.proc != nil {
			s.proc.Update(cur.tokens)
		}
		res = Result{Current: cur.tokens, Reverted: true}
	} else {
		parsed, err := opsFromDocs(ops, s.last)
		if err != nil {
			return Result{}, err
		}
		current, added, removed := applyOperations(parsed, s.last, nil)
		cur.tokens = current
		res = Result{Current: current, Added: added, Removed: removed}
	}

	persistOnce(res.Current, meta.ID)
	s.last = cur.tokens
	return res, nil
}

// diffWithDeadline runs the diff engine and, if ctx's deadline elapses
// first (or the engine returns early because ctx is done), substitutes the trivial delete-all/insert-all script spec.md §5
// mandates and resynchronizes the processor's baseline so later diffs in
// the page stay consistent. The diff goroutine is abandoned (not killed)
// on timeout since diffmatchpatch offers no cooperative cancellation; it
// finishes in the background and its result is discarded.
func (s *State) diffWithDeadline(ctx context.Context, text string) (Result, error) {
	type outcome struct {
		ops     []*token.Operation
		a, b    []*token.Token
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		ops, a, b, err := s.proc.Process(ctx, text)
		done <- outcome{ops, a, b, err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			current, added, removed := applyOperations(out.ops, out.a, out.b)
			return Result{Current: current, Added: added, Removed: removed, Ops: out.ops}, nil
		}
		if ctx.Err() == nil {
			return Result{}, out.err
		}
		// The engine gave up because ctx is done: same as a timeout.
	case <-ctx.Done():
	}

	a := s.last
	bStrings := token.Tokenize(text)
	b := make([]*token.Token, len(bStrings))
	for i, str := range bStrings {
		b[i] = token.New(str)
	}
	op := &token.Operation{Name: token.OpReplace, A1: 0, A2: len(a), B1: 0, B2: len(b), InsertedTokens: b, RemovedTokens: a}
	s.proc.Update(b)
	return Result{Current: b, Added: b, Removed: a, Ops: []*token.Operation{op}, TimedOut: true}, nil
}

func checksum(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// applyOperations walks the edit script into the (current, added, removed)
// triple (spec.md §4.1 step 3). For equal spans it re-reads a[a1:a2]
// directly so Token identity is preserved rather than trusting whatever the
// engine carried on the operation.
func applyOperations(ops []*token.Operation, a, b []*token.Token) (current, added, removed []*token.Token) {
	for _, op := range ops {
		switch op.Name {
		case token.OpEqual:
			current = append(current, a[op.A1:op.A2]...)
		case token.OpInsert:
			current = append(current, op.InsertedTokens...)
			added = append(added, op.InsertedTokens...)
		case token.OpDelete:
			removed = append(removed, op.RemovedTokens...)
		case token.OpReplace:
			current = append(current, op.InsertedTokens...)
			added = append(added, op.InsertedTokens...)
			removed = append(removed, op.RemovedTokens...)
		}
	}
	return current, added, removed
}

// opsFromDocs turns precomputed OpDocs into Operations. Inserted/replaced
// content has no prior Token instance, so fresh ones are created from the
// doc's Tokens strings; deleted/replaced-away content is looked up by index
// in prev so its Token identity is preserved rather than fabricated (spec.md
// §4.1 "precomputed operation documents" path).
func opsFromDocs(docs []*token.OpDoc, prev []*token.Token) ([]*token.Operation, error) {
	ops := make([]*token.Operation, 0, len(docs))
	for _, d := range docs {
		if !d.Name.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, d.Name)
		}
		op := &token.Operation{Name: d.Name, A1: d.A1, A2: d.A2, B1: d.B1, B2: d.B2}
		if d.Name == token.OpInsert || d.Name == token.OpReplace {
			op.InsertedTokens = make([]*token.Token, len(d.Tokens))
			for i, s := range d.Tokens {
				op.InsertedTokens[i] = token.New(s)
			}
		}
		if d.Name == token.OpDelete || d.Name == token.OpReplace {
			op.RemovedTokens = prev[d.A1:d.A2]
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// persistOnce appends revisionID to every distinct Token instance (by
// identity) in current, exactly once — spec.md §4.1 step 4: "Use an
// identity-keyed set for the dedup", needed because a diff algorithm may
// place the same source Token in more than one equal span.
func persistOnce(current []*token.Token, revisionID int64) {
	seen := token.NewSet()
	for _, t := range current {
		if seen.Add(t) {
			t.Persist(revisionID)
		}
	}
}
