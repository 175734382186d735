package vigenere

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBruteForceFinder_FindsAllPairs(t *testing.T) {
	pairs, err := BruteForceFinder{}.Find(context.Background(), "ABCDXABCDYABCD", 4)
	require.NoError(t, err)
	assert.Equal(t, []OffsetPair{{0, 5}, {0, 10}, {5, 10}}, pairs)
}

func TestFinders_ShortStream(t *testing.T) {
	finders := map[string]RepetitionFinder{
		"brute":   BruteForceFinder{},
		"indexed": IndexedFinder{},
	}
	for name, f := range finders {
		t.Run(name, func(t *testing.T) {
			pairs, err := f.Find(context.Background(), "ABC", 4)
			require.NoError(t, err)
			assert.Empty(t, pairs)

			pairs, err = f.Find(context.Background(), "ABCD", 4)
			require.NoError(t, err)
			assert.Empty(t, pairs)
		})
	}
}

func TestFinders_AgreeOnRandomStreams(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ctx := context.Background()

	for n := 0; n < 80; n++ {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte('A' + rng.IntN(3))
		}
		stream := string(buf)

		for _, m := range []int{1, 2, 4} {
			serial, err := BruteForceFinder{}.Find(ctx, stream, m)
			require.NoError(t, err)
			parallel, err := BruteForceFinder{Workers: 4}.Find(ctx, stream, m)
			require.NoError(t, err)
			indexed, err := IndexedFinder{}.Find(ctx, stream, m)
			require.NoError(t, err)

			assert.Equal(t, serial, parallel, "stream %q m=%d", stream, m)
			assert.Equal(t, serial, indexed, "stream %q m=%d", stream, m)
		}
	}
}

func TestBruteForceFinder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BruteForceFinder{}.Find(ctx, "ABCDABCDABCD", 4)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = BruteForceFinder{Workers: 2}.Find(ctx, "ABCDABCDABCD", 4)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = IndexedFinder{}.Find(ctx, "ABCDEFGH", 4)
	assert.ErrorIs(t, err, context.Canceled)
}
