package promise_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjdriver/promise"
)

func TestResolvedRoundTrip(t *testing.T) {
	loop := promise.NewLoop()
	v, err := promise.Wait(loop, promise.Resolved(42))
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRejectedRoundTrip(t *testing.T) {
	loop := promise.NewLoop()
	wantErr := errors.New("boom")
	_, err := promise.Wait(loop, promise.Rejected[int](wantErr))
	assert.ErrorIs(t, err, wantErr)
}

func TestThenPropagatesValue(t *testing.T) {
	loop := promise.NewLoop()
	p := promise.Then(promise.Resolved(2), func(v int) (int, error) {
		return v * 21, nil
	})
	v, err := promise.Wait(loop, p)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestThenSkipsOnDependencyError(t *testing.T) {
	loop := promise.NewLoop()
	wantErr := errors.New("dependency failed")
	ran := false
	p := promise.Then(promise.Rejected[int](wantErr), func(v int) (int, error) {
		ran = true
		return v, nil
	})
	_, err := promise.Wait(loop, p)
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, ran, "transform must not run when the dependency failed")
}

// TestTransformPanicBecomesFailure covers testable property 9: an
// exception (panic, in this port) thrown during a Transform's user function
// becomes the node's failure.
func TestTransformPanicBecomesFailure(t *testing.T) {
	loop := promise.NewLoop()
	p := promise.Then(promise.Resolved(1), func(int) (int, error) {
		panic("user code exploded")
	})
	_, err := promise.Wait(loop, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user code exploded")
}

func TestThenChainFlattens(t *testing.T) {
	loop := promise.NewLoop()
	p := promise.ThenChain(loop, promise.Resolved(2), func(v int) (promise.Promise[int], error) {
		return promise.Resolved(v + 1), nil
	})
	v, err := promise.Wait(loop, p)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

// TestThenChainPropagatesRejection covers testable property 8: a Chain
// whose step-1 resolves to a rejected promise propagates that rejection.
func TestThenChainPropagatesRejection(t *testing.T) {
	loop := promise.NewLoop()
	wantErr := errors.New("step one failed")
	p := promise.ThenChain(loop, promise.Resolved(2), func(int) (promise.Promise[int], error) {
		return promise.Rejected[int](wantErr), nil
	})
	_, err := promise.Wait(loop, p)
	assert.ErrorIs(t, err, wantErr)
}

func TestAttachClosesAttachmentsOnCompletion(t *testing.T) {
	loop := promise.NewLoop()
	closed := false
	p := promise.Attach(promise.Resolved("value"), closerFunc(func() error {
		closed = true
		return nil
	}))
	v, err := promise.Wait(loop, p)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.True(t, closed)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// TestForkBranchesShareOneResult covers the fork/branch round-trip law: the
// source is already ready, so the hub fires inside Fork, and two branches
// created afterwards both observe the same value while the shared
// dependency runs only once.
func TestForkBranchesShareOneResult(t *testing.T) {
	loop := promise.NewLoop()

	computeCount := 0
	source := promise.Then(promise.Resolved("x"), func(s string) (string, error) {
		computeCount++
		return s + s, nil
	})

	forked := promise.Fork(loop, source)
	branch1 := forked.Branch()
	branch2 := forked.Branch()

	v1, err := promise.Wait(loop, branch1)
	require.NoError(t, err)
	v2, err := promise.Wait(loop, branch2)
	require.NoError(t, err)

	assert.Equal(t, "xx", v1)
	assert.Equal(t, "xx", v2)
	assert.Equal(t, 1, computeCount, "the shared dependency must run exactly once")
}

func TestBranchWithProjectsSharedResult(t *testing.T) {
	loop := promise.NewLoop()

	type pair struct{ a, b int }
	forked := promise.Fork(loop, promise.Resolved(pair{a: 1, b: 2}))

	a := promise.BranchWith(forked, func(p pair) (int, error) { return p.a, nil })
	b := promise.BranchWith(forked, func(p pair) (int, error) { return p.b, nil })

	av, err := promise.Wait(loop, a)
	require.NoError(t, err)
	bv, err := promise.Wait(loop, b)
	require.NoError(t, err)

	assert.Equal(t, 1, av)
	assert.Equal(t, 2, bv)
}

// TestRacePicksFirstReady covers testable property 7: ExclusiveJoin yields
// the earlier of two completions.
func TestRacePicksFirstReady(t *testing.T) {
	loop := promise.NewLoop()

	loser := promise.NewAdapter[int]() // never fulfilled
	winner := promise.Resolved(7)

	p := promise.Race(loop, winner, loser.Promise())
	v, err := promise.Wait(loop, p)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestEagerRunsBeforeConsumption(t *testing.T) {
	loop := promise.NewLoop()

	ran := false
	dep := promise.Then(promise.Resolved(struct{}{}), func(struct{}) (struct{}, error) {
		ran = true
		return struct{}{}, nil
	})

	eager := promise.Eager(loop, dep)
	assert.True(t, ran, "an eager dependency must run at construction, before Wait")

	_, err := promise.Wait(loop, eager)
	require.NoError(t, err)
}

func TestAdapterFulfillAndReject(t *testing.T) {
	loop := promise.NewLoop()

	a := promise.NewAdapter[int]()
	a.Fulfill(9)
	v, err := promise.Wait(loop, a.Promise())
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	b := promise.NewAdapter[int]()
	wantErr := errors.New("adapter rejected")
	b.Reject(wantErr)
	_, err = promise.Wait(loop, b.Promise())
	assert.ErrorIs(t, err, wantErr)
}

func TestAdapterDoubleFulfillPanics(t *testing.T) {
	a := promise.NewAdapter[int]()
	a.Fulfill(1)
	assert.Panics(t, func() { a.Fulfill(2) })
}

func TestYieldCompletesInOneWait(t *testing.T) {
	loop := promise.NewLoop()
	_, err := promise.Wait(loop, promise.Yield())
	require.NoError(t, err)
}

// TestPanicPolicyRepanicEscapesWait covers testable property 11: under
// PanicPolicyRepanic, a captured panic is both recorded on the failing node
// and re-raised as a real Go panic out of Wait, instead of only being
// recorded as under the default PanicPolicyRecord.
func TestPanicPolicyRepanicEscapesWait(t *testing.T) {
	loop := promise.NewLoop(promise.WithPanicPolicy(promise.PanicPolicyRepanic))
	p := promise.Then(promise.Resolved(1), func(int) (int, error) {
		panic("user code exploded")
	})

	assert.PanicsWithValue(t, "user code exploded", func() {
		_, _ = promise.Wait(loop, p)
	})
}

func TestPanicPolicyRecordDoesNotEscapeWait(t *testing.T) {
	loop := promise.NewLoop(promise.WithPanicPolicy(promise.PanicPolicyRecord))
	p := promise.Then(promise.Resolved(1), func(int) (int, error) {
		panic("user code exploded")
	})

	require.NotPanics(t, func() {
		_, err := promise.Wait(loop, p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user code exploded")
	})
}
