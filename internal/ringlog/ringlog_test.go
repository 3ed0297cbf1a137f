package ringlog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penguintutor/vlcbbridge/internal/vlcb"
)

func bodyFor(i int) []byte {
	return []byte(fmt.Sprintf(":S%04d;", i))
}

func TestAppendAssignsContiguousSequences(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 10; i++ {
		seq := l.Append(vlcb.Outbound, bodyFor(i))
		assert.Equal(t, uint64(i), seq)
	}
}

func TestQueryEmptyLog(t *testing.T) {
	l := New(35, 30)
	res := l.Query(0, 9223372036854775807, 10)
	assert.Empty(t, res.Frames)
	assert.EqualValues(t, 0, res.EchoedFrom)
	assert.EqualValues(t, 0, res.EchoedTo)
	assert.EqualValues(t, 0, res.Produced)
}

func TestQueryRoundTripAfterSingleAppend(t *testing.T) {
	l := New(35, 30)
	l.Append(vlcb.Outbound, []byte(":SB780N0D;"))

	res := l.Query(0, 9223372036854775807, 64)
	require.Len(t, res.Frames, 1)
	assert.EqualValues(t, 0, res.EchoedFrom)
	assert.EqualValues(t, 0, res.EchoedTo)
	assert.EqualValues(t, 1, res.Produced)
	assert.Equal(t, ":SB780N0D;", string(res.Frames[0].Body))
	assert.Equal(t, vlcb.Outbound, res.Frames[0].Direction)
}

func TestQueryClientAheadOfServer(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 5; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	res := l.Query(10, 9223372036854775807, 64)
	assert.Empty(t, res.Frames)
	assert.EqualValues(t, 0, res.EchoedFrom)
	assert.EqualValues(t, 0, res.EchoedTo)
	assert.EqualValues(t, -5, res.Produced)
}

func TestQueryClampsToSafeWindowAndMaxBatch(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 100; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	res := l.Query(0, 9223372036854775807, 10)
	assert.EqualValues(t, 70, res.EchoedFrom)
	assert.EqualValues(t, 79, res.EchoedTo)
	assert.EqualValues(t, 10, res.Produced)
	require.Len(t, res.Frames, 10)
	assert.EqualValues(t, 70, res.Frames[0].Seq)
	assert.EqualValues(t, 79, res.Frames[9].Seq)
}

func TestQueryNegativeFromIsOffsetFromNewest(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 20; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	// W is 20 (newest 19); -5 means W-5 == seq 15, the five newest frames.
	res := l.Query(-5, 9223372036854775807, 64)
	require.NotEmpty(t, res.Frames)
	assert.EqualValues(t, 15, res.EchoedFrom)
	assert.EqualValues(t, 19, res.EchoedTo)
}

func TestQueryToBeforeFromIsRaisedToNewest(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 20; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	res := l.Query(10, 3, 64)
	assert.EqualValues(t, 10, res.EchoedFrom)
	assert.EqualValues(t, 19, res.EchoedTo)
}

func TestQueryIdempotentWithoutIntervalAppend(t *testing.T) {
	l := New(35, 30)
	for i := 0; i < 20; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	a := l.Query(0, 9223372036854775807, 64)
	b := l.Query(0, 9223372036854775807, 64)
	require.Equal(t, len(a.Frames), len(b.Frames))
	for i := range a.Frames {
		assert.Equal(t, a.Frames[i].Seq, b.Frames[i].Seq)
		assert.Equal(t, string(a.Frames[i].Body), string(b.Frames[i].Body))
	}
}

func TestWrapCorrectnessAfterTwoFullCycles(t *testing.T) {
	const ringCap, safe = 35, 30
	l := New(ringCap, safe)
	for i := 0; i < 2*ringCap; i++ {
		l.Append(vlcb.Inbound, bodyFor(i))
	}
	w, ok := l.Newest()
	require.True(t, ok)
	newest := int64(w)
	res := l.Query(newest-safe+1, newest, safe)
	require.Len(t, res.Frames, safe)
	assert.EqualValues(t, newest-safe+1, res.Frames[0].Seq)
	assert.EqualValues(t, newest, res.Frames[len(res.Frames)-1].Seq)
}

func TestQueryNeverAliasesSlotMemory(t *testing.T) {
	l := New(4, 3)
	l.Append(vlcb.Outbound, []byte(":AAAA;"))
	res := l.Query(0, 0, 1)
	require.Len(t, res.Frames, 1)
	res.Frames[0].Body[1] = 'Z'

	res2 := l.Query(0, 0, 1)
	assert.Equal(t, ":AAAA;", string(res2.Frames[0].Body))
}

func TestConcurrentAppendAndQueryNeverTornRead(t *testing.T) {
	l := New(64, 56)
	const writes = 5000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			l.Append(vlcb.Inbound, bodyFor(i))
		}
	}()

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			res := l.Query(-10, 9223372036854775807, 64)
			for _, f := range res.Frames {
				want := bodyFor(int(f.Seq))
				assert.Equal(t, want, f.Body)
			}
		}
	}()

	wg.Wait()
	close(stop)
}
