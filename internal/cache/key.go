package cache

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"

	"money-manager/internal/core"
)

// KeyMode selects how a record set is fingerprinted.
type KeyMode string

const (
	// KeyModeChecksum sums amount+id over the set. Order-independent and
	// cheap; two different sets can collide.
	KeyModeChecksum KeyMode = "checksum"
	// KeyModeStrict hashes the sorted (id, amount) pairs with FNV-64a.
	KeyModeStrict KeyMode = "strict"
)

// ParseKeyMode accepts "checksum" or "strict", case-insensitively.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(strings.ToLower(strings.TrimSpace(s))) {
	case KeyModeChecksum, "":
		return KeyModeChecksum, nil
	case KeyModeStrict:
		return KeyModeStrict, nil
	}
	return "", fmt.Errorf("unknown cache key mode %q", s)
}

// Key fingerprints a record set. Hash is only set in strict mode.
type Key struct {
	Count    int
	Checksum float64
	Hash     uint64
}

// KeyOf computes the fingerprint of records.
func KeyOf(records []core.Transaction, mode KeyMode) Key {
	k := Key{Count: len(records)}
	for _, r := range records {
		k.Checksum += r.Amount + float64(r.ID)
	}
	if mode == KeyModeStrict {
		k.Hash = strictHash(records)
	}
	return k
}

func strictHash(records []core.Transaction) uint64 {
	type pair struct {
		id     int64
		amount float64
	}
	pairs := make([]pair, len(records))
	for i, r := range records {
		pairs[i] = pair{r.ID, r.Amount}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].id != pairs[j].id {
			return pairs[i].id < pairs[j].id
		}
		return pairs[i].amount < pairs[j].amount
	})

	h := fnv.New64a()
	var buf [16]byte
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(buf[:8], uint64(p.id))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.amount))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String renders the key for use inside composite cache keys.
func (k Key) String() string {
	s := strconv.Itoa(k.Count) + ":" + strconv.FormatFloat(k.Checksum, 'g', -1, 64)
	if k.Hash != 0 {
		s += ":" + strconv.FormatUint(k.Hash, 16)
	}
	return s
}
