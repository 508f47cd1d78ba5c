package event

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libyield-go/account"
)

func sampleEvents() []Event {
	at := time.Unix(1_700_000_000, 0)
	return []Event{
		&YieldDistributed{TotalDistributed: uint256.NewInt(33), HoldersCount: 2, Timestamp: at},
		&ConversionRequested{
			RequestID: 1, Requester: account.Address{0xAA}, Amount: uint256.NewInt(100),
			RequestedAt: at, LockedUntil: at.Add(14 * 24 * time.Hour),
		},
		&ConversionStatusChanged{
			RequestID: 1, Requester: account.Address{0xAA}, Amount: uint256.NewInt(100),
			From: "Pending", To: "Processing", At: at,
		},
		&YieldRateUpdated{OldRateBps: 220, NewRateBps: 250, At: at},
		&DistributionPauseChanged{Paused: true, At: at},
		&HoldersRegistered{Accounts: []account.Address{{0xAA}, {0xBB}}, At: at},
	}
}

// --- Event decoding ---

func TestDecode_AllKinds(t *testing.T) {
	for _, ev := range sampleEvents() {
		t.Run(string(ev.Kind()), func(t *testing.T) {
			data, err := ev.MarshalBinary()
			require.NoError(t, err)

			decoded, err := Decode(ev.Kind(), data)
			require.NoError(t, err)
			assert.Equal(t, ev.Kind(), decoded.Kind())

			again, err := decoded.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := Decode("Nope", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecode_Truncated(t *testing.T) {
	data, err := (&YieldDistributed{TotalDistributed: uint256.NewInt(1)}).MarshalBinary()
	require.NoError(t, err)

	_, err = Decode(KindYieldDistributed, data[:len(data)-1])
	assert.ErrorIs(t, err, ErrInvalidEventData)

	_, err = Decode(KindYieldDistributed, append(data, 0x00))
	assert.ErrorIs(t, err, ErrInvalidEventData)
}

func TestDecode_HoldersRegisteredHugeCount(t *testing.T) {
	_, err := Decode(KindHoldersRegistered, []byte{0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidEventData)
}

// --- Journal ---

func newJournal(t *testing.T) (*Journal, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	return NewJournal(clk), clk
}

func TestJournal_AppendLinksRecords(t *testing.T) {
	j, clk := newJournal(t)

	for _, ev := range sampleEvents() {
		clk.Add(time.Second)
		require.NoError(t, j.Emit(ev))
	}
	require.Equal(t, 6, j.Len())
	require.NoError(t, j.Verify())

	all := j.Since(0, 0)
	require.Len(t, all, 6)
	assert.Equal(t, [HashSize]byte{}, all[0].Prev)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, all[i-1].Hash, all[i].Prev)
		assert.Equal(t, uint64(i+1), all[i].Seq)
		assert.NotEqual(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, all[5].Hash, j.Head())

	ev, err := all[0].Event()
	require.NoError(t, err)
	yd, ok := ev.(*YieldDistributed)
	require.True(t, ok)
	assert.Equal(t, uint64(33), yd.TotalDistributed.Uint64())
}

func TestJournal_Since(t *testing.T) {
	j, _ := newJournal(t)
	for _, ev := range sampleEvents() {
		require.NoError(t, j.Emit(ev))
	}

	page := j.Since(2, 2)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(3), page[0].Seq)
	assert.Equal(t, uint64(4), page[1].Seq)

	assert.Empty(t, j.Since(6, 10))
	assert.Len(t, j.Since(4, 0), 2)
}

func TestJournal_DetectsTampering(t *testing.T) {
	j, _ := newJournal(t)
	for _, ev := range sampleEvents() {
		require.NoError(t, j.Emit(ev))
	}

	records := j.Since(0, 0)
	tampered := *records[2]
	tampered.Data = append([]byte(nil), tampered.Data...)
	tampered.Data[len(tampered.Data)-1] ^= 0xff
	records[2] = &tampered

	err := NewJournal(clock.NewMock()).Restore(records)
	assert.ErrorIs(t, err, ErrChainBroken)

	dropped := append(append([]*Record(nil), j.Since(0, 2)...), j.Since(3, 0)...)
	err = NewJournal(clock.NewMock()).Restore(dropped)
	assert.ErrorIs(t, err, ErrChainBroken)
}

func TestRecord_BinaryRestoreVerifies(t *testing.T) {
	j, _ := newJournal(t)
	for _, ev := range sampleEvents() {
		require.NoError(t, j.Emit(ev))
	}

	var restored []*Record
	for _, r := range j.Since(0, 0) {
		data, err := r.MarshalBinary()
		require.NoError(t, err)
		var back Record
		require.NoError(t, back.UnmarshalBinary(data))
		restored = append(restored, &back)
	}

	other := NewJournal(clock.NewMock())
	require.NoError(t, other.Restore(restored))
	assert.Equal(t, j.Head(), other.Head())

	_, err := other.Append(&DistributionPauseChanged{Paused: false})
	require.NoError(t, err)
	assert.NoError(t, other.Verify())
}

func TestRecord_UnmarshalShort(t *testing.T) {
	var r Record
	assert.ErrorIs(t, r.UnmarshalBinary([]byte{0x01}), ErrInvalidRecord)
}

// --- Sinks ---

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	var got []Kind
	boom := errors.New("boom")
	f := Fanout{
		SinkFunc(func(ev Event) error { return boom }),
		SinkFunc(func(ev Event) error { got = append(got, ev.Kind()); return nil }),
	}

	err := f.Emit(&DistributionPauseChanged{Paused: true})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []Kind{KindDistributionPauseChanged}, got)
	assert.NoError(t, Discard.Emit(&DistributionPauseChanged{}))
}

func TestLogSink(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := LogSink{Log: log}

	require.NoError(t, s.Emit(&YieldDistributed{TotalDistributed: uint256.NewInt(33), HoldersCount: 2}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, string(KindYieldDistributed), entry.Message)
	assert.Equal(t, "33", entry.Data["total_distributed"])
	assert.Equal(t, uint64(2), entry.Data["holders"])
}
