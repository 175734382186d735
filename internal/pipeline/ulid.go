package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26 Crockford Base32 characters, a 48-bit millisecond
// timestamp followed by 80 bits of which the first 16 are a per-millisecond
// sequence. IDs generated by one process sort by creation order.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewJobID returns a fresh ULID.
func NewJobID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts <= lastTS {
		ts = lastTS
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)
	return encodeULID(b)
}

// encodeULID writes the 128 bits as 26 five-bit digits, the first digit
// holding only the top three bits.
func encodeULID(b [16]byte) string {
	var out [26]byte
	for i := range out {
		var v byte
		for k := range 5 {
			pos := i*5 + k - 2
			v <<= 1
			if pos >= 0 {
				v |= (b[pos/8] >> (7 - pos%8)) & 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
