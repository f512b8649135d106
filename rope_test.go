package rope

import (
	"math/rand"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestEmptyRope(t *testing.T) {
	rope := New[Lipsum]()
	if rope.Len() != 0 || rope.Width() != 0 {
		t.Errorf("expected empty rope, got %v", rope.SliceInfo())
	}
	if rope.Depth() != 1 {
		t.Errorf("expected a pure leaf of depth 1, got depth %d", rope.Depth())
	}
	assertSound(t, rope)
}

func TestZeroWidthBoundary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	defer teardown()
	//
	rope := FromSlice([]Lipsum{Sit(), Amet(), Lorem()})
	require.Equal(t, 3, rope.Len())
	require.Equal(t, 1, rope.Width())

	require.Equal(t, 0, rope.StartWidthToIndex(0))
	require.Equal(t, 2, rope.EndWidthToIndex(0))
	require.Equal(t, 0, rope.IndexToWidth(2))

	chunk, info := rope.LastChunkAtWidth(0)
	require.Equal(t, 0, info.Len)
	require.Equal(t, []Lipsum{Sit(), Amet(), Lorem()}, chunk)
}

func TestGetAndChunkAtIndex(t *testing.T) {
	fuzzer := lipsumFuzzer(23)
	elements := randomLipsums(fuzzer, 3*maxLen)
	rope := FromSlice(elements)
	for _, i := range []int{0, 1, maxLen - 1, maxLen, 2*maxLen + 1, len(elements) - 1} {
		require.Equal(t, elements[i], rope.Get(i), "index %d", i)
		chunk, info := rope.ChunkAtIndex(i)
		require.Equal(t, elements[i], chunk[i-info.Len], "index %d", i)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(29)
	elements := randomLipsums(fuzzer, 2*maxLen+7)
	rope := FromSlice(elements)
	for i, element := range elements {
		width := rope.IndexToWidth(i)
		require.Equal(t, indexToWidth(elements, i), width, "index %d", i)
		if element.Width() > 0 {
			// Positive-width elements are the unique element at their
			// coordinate; the end-biased conversion recovers the index.
			require.Equal(t, i, rope.EndWidthToIndex(width), "index %d", i)
			require.LessOrEqual(t, rope.StartWidthToIndex(width), i, "index %d", i)
		}
	}
}

// Scenario: random inserts at random width coordinates, checking metadata
// integrity and the structural invariants after every single edit. Run
// with `-tags smallchunks` to force deep trees.
func TestRandomInserts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(31)
	rng := rand.New(rand.NewSource(31))
	rope := New[Lipsum]()
	var model []Lipsum

	for step := 0; step < 500; step++ {
		var element Lipsum
		fuzzer.Fuzz(&element)
		width := rng.Intn(rope.Width() + 1)

		index := startWidthToIndex(model, width)
		require.Equal(t, index, rope.StartWidthToIndex(width), "step %d", step)

		rope.Insert(width, element)
		model = append(model[:index:index], append([]Lipsum{element}, model[index:]...)...)

		require.Equal(t, len(model), rope.Len(), "step %d", step)
		require.Equal(t, lipsumWidth(model), rope.Width(), "step %d", step)
		assertSound(t, rope)
		if step%50 == 49 {
			assertRopeEquals(t, rope, model)
		}
	}
	assertRopeEquals(t, rope, model)
}

func TestInsertLargeSlice(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(37)
	// Positive-width base elements keep every width coordinate unambiguous,
	// so the flat model and the splice agree on the insertion point.
	base := make([]Lipsum, 4*maxLen)
	for i := range base {
		base[i] = Dolor(1 + i%5)
	}
	big := randomLipsums(fuzzer, 3*maxLen+5)
	rope := FromSlice(base)

	width := indexToWidth(base, 2*maxLen)
	index := startWidthToIndex(base, width)
	rope.InsertSlice(width, big)

	model := append(base[:index:index], append(append([]Lipsum{}, big...), base[index:]...)...)
	assertRopeEquals(t, rope, model)
	assertSound(t, rope)
}

// Scenario: removing a width range must equal cutting the flat model
// between the start-biased index of w0 and the end-biased index of w1.
func TestRandomRemoveRanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(41)
	rng := rand.New(rand.NewSource(41))
	model := randomLipsums(fuzzer, 1000)
	rope := FromSlice(model)
	assertSound(t, rope)

	for step := 0; step < 120 && len(model) > 0; step++ {
		w0 := rng.Intn(rope.Width() + 1)
		w1 := w0 + rng.Intn(rope.Width()-w0+1)

		start := startWidthToIndex(model, w0)
		end := endWidthToIndex(model, w1)
		switch {
		case w0 == w1 && (start == len(model) || model[start].Width() > 0):
			// Removal strictly inside one element: a no-op.
		default:
			model = append(model[:start:start], model[end:]...)
		}

		rope.Remove(w0, w1)
		require.Equal(t, len(model), rope.Len(), "step %d, range [%d,%d)", step, w0, w1)
		require.Equal(t, lipsumWidth(model), rope.Width(), "step %d, range [%d,%d)", step, w0, w1)
		assertSound(t, rope)
		assertRopeEquals(t, rope, model)

		// Top the rope back up now and then so removals stay interesting.
		if rope.Len() < 200 {
			refill := randomLipsums(fuzzer, 400)
			width := rope.Width()
			rope.InsertSlice(width, refill)
			model = append(model, refill...)
			assertSound(t, rope)
		}
	}
}

func TestRemoveInsideElementIsNoop(t *testing.T) {
	rope := FromSlice([]Lipsum{Lorem(), Dolor(10), Ipsum()})
	rope.Remove(5, 5)
	require.Equal(t, 3, rope.Len())
	require.Equal(t, 13, rope.Width())
}

func TestRemoveAll(t *testing.T) {
	fuzzer := lipsumFuzzer(43)
	rope := FromSlice(randomLipsums(fuzzer, 300))
	rope.Remove(0, rope.Width())
	require.Equal(t, 0, rope.Len())
	assertSound(t, rope)
}

func TestRemovePanicsOnInvalidRange(t *testing.T) {
	rope := FromSlice([]Lipsum{Lorem(), Ipsum()})
	require.Panics(t, func() { rope.Remove(2, 1) })
	require.Panics(t, func() { rope.Remove(0, rope.Width()+1) })
	require.Panics(t, func() { rope.Insert(rope.Width()+1, Lorem()) })
}

// Scenario: appending ropes of different depths yields a balanced rope
// with the summed totals.
func TestAppendDepthMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(47)
	small := randomLipsums(fuzzer, 5)
	large := randomLipsums(fuzzer, 2*maxLen*maxChildren)

	shallow := FromSlice(small)
	deep := FromSlice(large)
	require.Equal(t, 1, shallow.Depth())
	require.GreaterOrEqual(t, deep.Depth(), 3)

	// Deep ← shallow: append descends the right spine.
	combined := deep.Clone()
	combined.Append(shallow)
	require.Equal(t, len(large)+len(small), combined.Len())
	require.Equal(t, lipsumWidth(large)+lipsumWidth(small), combined.Width())
	assertRopeEquals(t, combined, append(append([]Lipsum{}, large...), small...))
	assertSound(t, combined)

	// Shallow ← deep: append has to prepend into the deeper tree.
	combined = shallow.Clone()
	combined.Append(deep)
	require.Equal(t, len(small)+len(large), combined.Len())
	assertRopeEquals(t, combined, append(append([]Lipsum{}, small...), large...))
	assertSound(t, combined)

	// The inputs survive untouched.
	assertRopeEquals(t, shallow, small)
	assertRopeEquals(t, deep, large)
	assertSound(t, shallow)
	assertSound(t, deep)
}

// Round-trip: splitting at a width boundary and appending the parts back
// together restores the original sequence.
func TestSplitOffRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(53)
	rng := rand.New(rand.NewSource(53))
	elements := randomLipsums(fuzzer, 800)
	original := FromSlice(elements)

	for step := 0; step < 40; step++ {
		width := rng.Intn(original.Width() + 1)
		left := original.Clone()
		right := left.SplitOff(width)
		assertSound(t, left)
		assertSound(t, right)
		require.Equal(t, original.Width(), left.Width()+right.Width(), "step %d, width %d", step, width)

		left.Append(right)
		assertRopeEquals(t, left, elements)
		assertSound(t, left)
	}
	// The original is never disturbed by split/append on clones.
	assertRopeEquals(t, original, elements)
	assertSound(t, original)
}

func TestSplitOffZeroWidthRunGoesRight(t *testing.T) {
	rope := FromSlice([]Lipsum{Lorem(), Sit(), Amet(), Ipsum()})
	right := rope.SplitOff(1)
	require.Equal(t, []Lipsum{Lorem()}, rope.Slice())
	require.Equal(t, []Lipsum{Sit(), Amet(), Ipsum()}, right.Slice())
}

// Clones share structure but never observe each other's mutations.
func TestCloneIndependence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "rope")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	fuzzer := lipsumFuzzer(59)
	rng := rand.New(rand.NewSource(59))
	elements := randomLipsums(fuzzer, 600)
	original := FromSlice(elements)
	clone := original.Clone()

	for step := 0; step < 60; step++ {
		var element Lipsum
		fuzzer.Fuzz(&element)
		clone.Insert(rng.Intn(clone.Width()+1), element)
		if clone.Width() > 2 {
			w0 := rng.Intn(clone.Width())
			clone.Remove(w0, w0+rng.Intn(clone.Width()-w0))
		}
	}
	assertSound(t, clone)
	assertRopeEquals(t, original, elements)
	assertSound(t, original)
}

func TestEachStopsEarly(t *testing.T) {
	rope := FromSlice([]Lipsum{Lorem(), Ipsum(), Dolor(3), Sit()})
	visited := 0
	rope.Each(func(Lipsum) bool {
		visited++
		return visited < 2
	})
	require.Equal(t, 2, visited)
}
