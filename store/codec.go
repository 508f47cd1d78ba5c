package store

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/conversion"
)

const (
	stateVersion = 1

	// version(1) + owner(20) + distributor(20) + rate(4) + paused(1) +
	// last_distribution(8) + max_holders(4)
	metaSize = 58

	// id(8) + requester(20) + amount(32) + requested_at(8) + locked_until(8) + status(1)
	requestSize = 77
)

// serializeMeta encodes the scalar part of a State.
func serializeMeta(st *State) []byte {
	buf := make([]byte, metaSize)
	offset := 0

	buf[offset] = stateVersion
	offset++

	copy(buf[offset:offset+20], st.Owner[:])
	offset += 20
	copy(buf[offset:offset+20], st.Distributor[:])
	offset += 20

	binary.BigEndian.PutUint32(buf[offset:offset+4], st.WeeklyRateBps)
	offset += 4

	if st.Paused {
		buf[offset] = 1
	}
	offset++

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(st.LastDistribution.UnixNano()))
	offset += 8

	binary.BigEndian.PutUint32(buf[offset:offset+4], st.MaxHolders)
	return buf
}

// deserializeMeta decodes the scalar part of a State into st.
func deserializeMeta(data []byte, st *State) error {
	if len(data) != metaSize {
		return fmt.Errorf("%w: meta is %d bytes, want %d", ErrInvalidStateData, len(data), metaSize)
	}
	if data[0] != stateVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}
	offset := 1

	copy(st.Owner[:], data[offset:offset+20])
	offset += 20
	copy(st.Distributor[:], data[offset:offset+20])
	offset += 20

	st.WeeklyRateBps = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	switch data[offset] {
	case 0:
	case 1:
		st.Paused = true
	default:
		return fmt.Errorf("%w: paused flag %d", ErrInvalidStateData, data[offset])
	}
	offset++

	st.LastDistribution = time.Unix(0, int64(binary.BigEndian.Uint64(data[offset:offset+8]))).UTC()
	offset += 8

	st.MaxHolders = binary.BigEndian.Uint32(data[offset : offset+4])
	return nil
}

// serializeRequest encodes one conversion request.
func serializeRequest(r *conversion.Request) []byte {
	buf := make([]byte, requestSize)
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:offset+8], r.ID)
	offset += 8

	copy(buf[offset:offset+20], r.Requester[:])
	offset += 20

	r.Amount.WriteToSlice(buf[offset : offset+32])
	offset += 32

	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(r.RequestedAt.UnixNano()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(r.LockedUntil.UnixNano()))
	offset += 8

	buf[offset] = byte(r.Status)
	return buf
}

// deserializeRequest decodes one conversion request.
func deserializeRequest(data []byte) (*conversion.Request, error) {
	if len(data) != requestSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidRequestData, len(data), requestSize)
	}
	offset := 0
	r := &conversion.Request{}

	r.ID = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	copy(r.Requester[:], data[offset:offset+20])
	offset += 20

	r.Amount = new(uint256.Int).SetBytes32(data[offset : offset+32])
	offset += 32

	r.RequestedAt = time.Unix(0, int64(binary.BigEndian.Uint64(data[offset:offset+8]))).UTC()
	offset += 8
	r.LockedUntil = time.Unix(0, int64(binary.BigEndian.Uint64(data[offset:offset+8]))).UTC()
	offset += 8

	r.Status = conversion.Status(data[offset])
	if !r.Status.Valid() {
		return nil, fmt.Errorf("%w: request %d: status %d", ErrInvalidRequestData, r.ID, data[offset])
	}
	return r, nil
}

// indexKey encodes a holder position as a sortable 4-byte key.
func indexKey(i int) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(i))
}

// idKey encodes a request id as a sortable 8-byte key.
func idKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func decodeHolder(v []byte) (account.Address, error) {
	return account.FromBytes(v)
}
