//go:build cgo

package ffi

import (
	"strconv"
	"testing"
	"unsafe"

	"github.com/srg/astrod/internal/record"
	"github.com/srg/astrod/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, r *record.ConfigRecord) []byte {
	t.Helper()
	data, err := wire.EncodeConfig(r)
	require.NoError(t, err)
	return data
}

func TestDecode_ReleaseBalancesAllocations(t *testing.T) {
	tests := []struct {
		name       string
		rec        *record.ConfigRecord
		wantAllocs int64
	}{
		{
			name: "iso with nine choices",
			rec: &record.ConfigRecord{
				ID:      "iso",
				Value:   "12800",
				Choices: []string{"100", "200", "400", "800", "1600", "3200", "6400", "12800", "25600"},
			},
			// struct + id + value + array + 9 choices
			wantAllocs: 13,
		},
		{
			name:       "no choices",
			rec:        &record.ConfigRecord{ID: "artist", Value: "someone", Readonly: true},
			wantAllocs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, tt.rec)
			allocsBefore, freesBefore := Counters()

			h := DecodeBytes(data)
			require.False(t, h.IsNull())

			allocsAfter, _ := Counters()
			assert.Equal(t, tt.wantAllocs, allocsAfter-allocsBefore)
			assert.True(t, tt.rec.Equal(h.Record()), "got %+v", h.Record())

			h.Release()
			assert.True(t, h.IsNull())

			allocsEnd, freesEnd := Counters()
			assert.Equal(t, allocsEnd-allocsBefore, freesEnd-freesBefore, "every allocation released exactly once")
		})
	}
}

func TestRelease_Twice(t *testing.T) {
	rec := &record.ConfigRecord{ID: "iso", Value: "100", Choices: []string{"100"}}
	h := DecodeBytes(encode(t, rec))
	require.False(t, h.IsNull())

	_, freesBefore := Counters()
	h.Release()
	_, freesMid := Counters()
	h.Release()
	_, freesAfter := Counters()

	// struct + id + value + array + one buffer per choice
	assert.Equal(t, int64(4+len(rec.Choices)), freesMid-freesBefore)
	assert.Equal(t, freesMid, freesAfter, "second release must not free again")
}

func TestRelease_NullHandle(t *testing.T) {
	var h Handle
	_, before := Counters()
	h.Release()
	(*Handle)(nil).Release()
	ReleasePointer(nil)
	_, after := Counters()
	assert.Equal(t, before, after)
}

func TestDecode_NullOrEmpty(t *testing.T) {
	allocsBefore, _ := Counters()

	assert.True(t, Decode(nil, 10).IsNull())
	assert.True(t, DecodeBytes(nil).IsNull())
	assert.True(t, DecodeBytes([]byte{}).IsNull())

	data := encode(t, &record.ConfigRecord{ID: "iso", Value: "100"})
	assert.True(t, Decode(unsafe.Pointer(&data[0]), 0).IsNull())

	allocsAfter, _ := Counters()
	assert.Equal(t, allocsBefore, allocsAfter)
}

func TestDecode_CorruptInputAllocatesNothing(t *testing.T) {
	data := encode(t, &record.ConfigRecord{ID: "iso", Value: "100"})
	allocsBefore, _ := Counters()

	h := DecodeBytes(data[:len(data)-2])
	assert.True(t, h.IsNull())
	assert.True(t, DecodeBytes([]byte{1, 2, 3}).IsNull())

	allocsAfter, _ := Counters()
	assert.Equal(t, allocsBefore, allocsAfter)
}

func TestDecode_RawPointer(t *testing.T) {
	rec := &record.ConfigRecord{ID: "shutterspeed", Value: "0.0050s", Choices: []string{"0.0050s", "1.0000s"}}
	data := encode(t, rec)

	h := Decode(unsafe.Pointer(&data[0]), len(data))
	require.False(t, h.IsNull())
	assert.True(t, rec.Equal(h.Record()))

	outstanding := Outstanding()
	ReleasePointer(h.Pointer())
	assert.Equal(t, outstanding-6, Outstanding())
}

func TestDecode_OversizedLengthIsNull(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("lengths above 2GiB need a 64-bit int")
	}
	data := encode(t, &record.ConfigRecord{ID: "iso", Value: "100"})
	allocsBefore, _ := Counters()

	gib4 := uint64(1) << 32
	tests := []struct {
		name   string
		length int
	}{
		{name: "just over the bound", length: MaxInputLen + 1},
		{name: "2GiB", length: int(gib4 / 2)},
		{name: "4GiB plus the real length", length: int(gib4) + len(data)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the pointer is never read past len(data): the length is rejected first
			assert.True(t, Decode(unsafe.Pointer(&data[0]), tt.length).IsNull())
		})
	}

	allocsAfter, _ := Counters()
	assert.Equal(t, allocsBefore, allocsAfter)
}
