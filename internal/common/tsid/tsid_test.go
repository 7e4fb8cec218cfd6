package tsid

import (
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"
)

var crockford = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{13}$`)

func TestGenerate(t *testing.T) {
	id := Generate()
	if !crockford.MatchString(id) {
		t.Errorf("Generate() = %q, want 13 Crockford Base32 characters", id)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	var ids sync.Map
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				id := Generate()
				if _, loaded := ids.LoadOrStore(id, true); loaded {
					t.Errorf("duplicate id %s", id)
				}
			}
		}()
	}
	wg.Wait()
}

func TestGenerateSortsWithinMillisecond(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := &Generator{now: func() time.Time { return fixed }}

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.Generate()
	}

	if !sort.StringsAreSorted(ids) {
		t.Error("ids from a frozen clock should still sort in issue order")
	}
}

func TestTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 30, 15, 0, time.UTC)
	g := &Generator{now: func() time.Time { return fixed }}

	got, err := Timestamp(g.Generate())
	if err != nil {
		t.Fatalf("Timestamp() error = %v", err)
	}
	if !got.Equal(fixed) {
		t.Errorf("Timestamp() = %v, want %v", got, fixed)
	}
}

func TestTimestampRejectsInvalidCharacters(t *testing.T) {
	for _, id := range []string{"0000000000U00", "not-a-tsid!!!"} {
		if _, err := Timestamp(id); err != ErrInvalidCharacter {
			t.Errorf("Timestamp(%q) error = %v, want ErrInvalidCharacter", id, err)
		}
	}
}

func TestDecodeAcceptsAliases(t *testing.T) {
	a, err := decode("0O1IL")
	if err != nil {
		t.Fatal(err)
	}
	b, err := decode("00111")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("aliases decoded to %d, want %d", a, b)
	}
}
