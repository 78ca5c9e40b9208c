package wire

import (
	"fmt"
	"strings"

	"github.com/srg/astrod/internal/fault"
)

// EncodeList serializes an ordered sequence of setting ids for the list notification.
// The list payload is not compressed.
func EncodeList(ids []string) ([]byte, error) {
	data, err := encMode.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize setting list: %w", err)
	}
	return data, nil
}

// DecodeList reverses EncodeList.
func DecodeList(data []byte) ([]string, error) {
	var ids []string
	if err := decMode.Unmarshal(data, &ids); err != nil {
		return nil, fault.Wrap(fault.Decode, "deserialize setting list", err)
	}
	return ids, nil
}

// JoinList renders ids as the human-readable read response.
func JoinList(ids []string) []byte {
	return []byte(strings.Join(ids, ","))
}
