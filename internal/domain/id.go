package domain

import (
	"encoding/base64"
	"encoding/binary"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

var idCounter atomic.Uint32

// NewID returns a fresh element id: a millisecond timestamp, a process-wide
// counter and random bits, base64 encoded. Ids sort roughly by creation time.
func NewID() string {
	var buf [15]byte
	ms := uint64(time.Now().UnixMilli())
	buf[0] = byte(ms >> 40)
	buf[1] = byte(ms >> 32)
	binary.BigEndian.PutUint32(buf[2:6], uint32(ms))

	n := idCounter.Add(1)
	buf[6] = byte(n >> 16)
	buf[7] = byte(n >> 8)
	buf[8] = byte(n)

	r := rand.Uint64()
	binary.BigEndian.PutUint32(buf[9:13], uint32(r))
	binary.BigEndian.PutUint16(buf[13:15], uint16(r>>32))

	return base64.RawURLEncoding.EncodeToString(buf[:])
}
