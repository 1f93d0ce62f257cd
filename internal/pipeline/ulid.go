package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 26 Crockford base32 characters, a 48-bit millisecond
// timestamp followed by 80 bits of which the first 16 are a per-millisecond
// sequence and the rest random. IDs sort by creation time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	ulidMu.Lock()
	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS, lastSeq = ts, 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encode(b)
}

// encode writes the 128 bits of b as 26 base32 digits, most significant
// first. The leading digit carries only the top 3 bits.
func encode(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
