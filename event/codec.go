package event

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

// encoder appends fixed-width big-endian fields.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }

func (e *encoder) u64(v uint64) { e.buf = binary.BigEndian.AppendUint64(e.buf, v) }

func (e *encoder) time(t time.Time) { e.u64(uint64(t.UnixNano())) }

func (e *encoder) addr(a account.Address) { e.buf = append(e.buf, a[:]...) }

func (e *encoder) amount(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) bytes(b []byte) {
	e.u32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) str(s string) { e.bytes([]byte(s)) }

func (e *encoder) boolean(v bool) {
	if v {
		e.u8(1)
		return
	}
	e.u8(0)
}

// decoder reads the fields written by encoder. The first short read is
// remembered in err and every later read returns zero values.
type decoder struct {
	data []byte
	off  int
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.off+n > len(d.data) {
		d.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrInvalidEventData, n, d.off, len(d.data))
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (d *decoder) time() time.Time { return time.Unix(0, int64(d.u64())) }

func (d *decoder) addr() account.Address {
	var a account.Address
	copy(a[:], d.take(account.Size))
	return a
}

func (d *decoder) amount() *uint256.Int {
	b := d.take(32)
	if b == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).SetBytes(b)
}

func (d *decoder) bytes() []byte {
	n := d.u32()
	b := d.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (d *decoder) str() string { return string(d.bytes()) }

func (d *decoder) boolean() bool { return d.u8() == 1 }

// finish reports the first decode error, or trailing bytes.
func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidEventData, len(d.data)-d.off)
	}
	return nil
}
