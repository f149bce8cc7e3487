package core

import "math/rand"

// SpawnStreams derives n private random streams from a master seed.
// Each worker owns one stream for the whole render, so the sequence of
// draws is reproducible for a fixed seed and stream count.
func SpawnStreams(seed int64, n int) []*rand.Rand {
	master := rand.New(rand.NewSource(seed))
	streams := make([]*rand.Rand, n)
	for i := range streams {
		streams[i] = rand.New(rand.NewSource(master.Int63()))
	}
	return streams
}
