package event

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// HashSize is the length of a journal record hash.
const HashSize = blake2b.Size256

// Record is one journal entry.
type Record struct {
	Seq  uint64
	ID   uuid.UUID
	Kind Kind
	At   time.Time
	Data []byte
	Prev [HashSize]byte
	Hash [HashSize]byte
}

// Event decodes the record payload.
func (r *Record) Event() (Event, error) {
	return Decode(r.Kind, r.Data)
}

// computeHash hashes every field except Hash itself.
func (r *Record) computeHash() [HashSize]byte {
	var enc encoder
	enc.buf = append(enc.buf, r.Prev[:]...)
	enc.u64(r.Seq)
	enc.buf = append(enc.buf, r.ID[:]...)
	enc.str(string(r.Kind))
	enc.time(r.At)
	enc.bytes(r.Data)
	return blake2b.Sum256(enc.buf)
}

// MarshalBinary encodes the record for storage.
func (r *Record) MarshalBinary() ([]byte, error) {
	var enc encoder
	enc.u64(r.Seq)
	enc.buf = append(enc.buf, r.ID[:]...)
	enc.str(string(r.Kind))
	enc.time(r.At)
	enc.buf = append(enc.buf, r.Prev[:]...)
	enc.buf = append(enc.buf, r.Hash[:]...)
	enc.bytes(r.Data)
	return enc.buf, nil
}

// UnmarshalBinary decodes a stored record.
func (r *Record) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}
	r.Seq = d.u64()
	copy(r.ID[:], d.take(16))
	r.Kind = Kind(d.str())
	r.At = d.time()
	copy(r.Prev[:], d.take(HashSize))
	copy(r.Hash[:], d.take(HashSize))
	r.Data = d.bytes()
	if err := d.finish(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// SeqKey encodes a sequence number as a sortable 8-byte key.
func SeqKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

// Journal is an in-memory, append-only, hash-chained event log.
type Journal struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records []*Record
}

// Compile-time interface check.
var _ Sink = (*Journal)(nil)

// NewJournal creates an empty journal stamping records with clk.
func NewJournal(clk clock.Clock) *Journal {
	return &Journal{clock: clk}
}

// Emit appends ev.
func (j *Journal) Emit(ev Event) error {
	_, err := j.Append(ev)
	return err
}

// Append encodes ev, links it to the previous record and stores it.
func (j *Journal) Append(ev Event) (*Record, error) {
	data, err := ev.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("event: encode %s: %w", ev.Kind(), err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	r := &Record{
		Seq:  uint64(len(j.records)) + 1,
		ID:   uuid.New(),
		Kind: ev.Kind(),
		At:   j.clock.Now(),
		Data: data,
	}
	if n := len(j.records); n > 0 {
		r.Prev = j.records[n-1].Hash
	}
	r.Hash = r.computeHash()
	j.records = append(j.records, r)
	return r, nil
}

// Len returns the number of records.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}

// Head returns the hash of the newest record, or zeros when empty.
func (j *Journal) Head() [HashSize]byte {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.records) == 0 {
		return [HashSize]byte{}
	}
	return j.records[len(j.records)-1].Hash
}

// Since returns up to limit records with Seq > after, oldest first.
// A limit <= 0 returns all of them.
func (j *Journal) Since(after uint64, limit int) []*Record {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if after >= uint64(len(j.records)) {
		return nil
	}
	rest := j.records[after:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}
	out := make([]*Record, len(rest))
	copy(out, rest)
	return out
}

// Verify checks sequence numbers, links and hashes of every record.
func (j *Journal) Verify() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return verifyChain(j.records)
}

// Restore replaces the journal with previously stored records after
// verifying them.
func (j *Journal) Restore(records []*Record) error {
	if err := verifyChain(records); err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append([]*Record(nil), records...)
	return nil
}

func verifyChain(records []*Record) error {
	var prev [HashSize]byte
	for i, r := range records {
		if r.Seq != uint64(i)+1 {
			return fmt.Errorf("%w: record %d has seq %d", ErrChainBroken, i+1, r.Seq)
		}
		if r.Prev != prev {
			return fmt.Errorf("%w: record %d does not link to its predecessor", ErrChainBroken, r.Seq)
		}
		if r.computeHash() != r.Hash {
			return fmt.Errorf("%w: record %d hash mismatch", ErrChainBroken, r.Seq)
		}
		prev = r.Hash
	}
	return nil
}
