// Package tsid generates time-sorted identifiers encoded as 13 characters of
// Crockford Base32. The upper 42 bits hold milliseconds since 2020-01-01 and
// the lower 22 bits a random node value mixed with a per-millisecond sequence,
// so ids issued by one process sort by creation time.
package tsid

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"
	"time"
)

const (
	epochMillis = 1577836800000

	randomBits = 22
	randomMask = (1 << randomBits) - 1
	seqBits    = 12
	seqMask    = (1 << seqBits) - 1

	encodedLen = 13
	alphabet   = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
)

// ErrInvalidCharacter is returned when decoding a string that is not Crockford Base32.
var ErrInvalidCharacter = errors.New("invalid character in TSID")

// Generator issues ids. The zero value is ready to use.
type Generator struct {
	mu       sync.Mutex
	lastTime int64
	node     uint64
	seq      uint64
	now      func() time.Time
}

var defaultGenerator = &Generator{}

// Generate returns a new id from the process-wide generator.
func Generate() string {
	return defaultGenerator.Generate()
}

// Generate returns a new id.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.clock().UnixMilli() - epochMillis
	if ms < g.lastTime {
		ms = g.lastTime
	}

	if ms == g.lastTime {
		g.seq = (g.seq + 1) & seqMask
		if g.seq == 0 {
			// sequence exhausted for this millisecond
			ms++
		}
	} else {
		g.node = randomNode()
		g.seq = 0
	}
	g.lastTime = ms

	low := (g.node<<seqBits | g.seq) & randomMask
	return encode(uint64(ms)<<randomBits | low)
}

func (g *Generator) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

func randomNode() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint64(b[:]) >> (64 - (randomBits - seqBits))
}

func encode(v uint64) string {
	out := make([]byte, encodedLen)
	for i := encodedLen - 1; i >= 0; i-- {
		out[i] = alphabet[v&0x1F]
		v >>= 5
	}
	return string(out)
}

func decode(s string) (uint64, error) {
	var v uint64
	for i := 0; i < len(s); i++ {
		d := digit(s[i])
		if d < 0 {
			return 0, ErrInvalidCharacter
		}
		v = v<<5 | uint64(d)
	}
	return v, nil
}

// digit maps a Crockford character to its value, accepting lowercase and
// the I/L/O aliases.
func digit(c byte) int {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	switch c {
	case 'I', 'L':
		return 1
	case 'O':
		return 0
	case 'U':
		return -1
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == c {
			return i
		}
	}
	return -1
}

// Timestamp extracts the creation time encoded in an id.
func Timestamp(id string) (time.Time, error) {
	v, err := decode(id)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(v>>randomBits) + epochMillis), nil
}
