package protocol

import (
	"sort"

	"robots/internal/wire"
)

// EncodeList writes a u32-length-prefixed list, encoding each element with
// enc.
func EncodeList[T any](b wire.Buffer, items []T, enc func(wire.Buffer, T) error) error {
	if err := b.WriteU32(uint32(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := enc(b, item); err != nil {
			return err
		}
	}
	return nil
}

// DecodeList reads a u32-length-prefixed list, decoding each element with
// dec.
func DecodeList[T any](b wire.Buffer, dec func(wire.Buffer) (T, error)) ([]T, error) {
	n, err := b.ReadU32()
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		item, err := dec(b)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// EncodeMap writes a u32-length-prefixed list of (K,V) pairs in ascending
// key order, per less.
func EncodeMap[K comparable, V any](
	b wire.Buffer, m map[K]V,
	less func(a, b K) bool,
	encKey func(wire.Buffer, K) error,
	encVal func(wire.Buffer, V) error,
) error {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })

	if err := b.WriteU32(uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := encKey(b, k); err != nil {
			return err
		}
		if err := encVal(b, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMap reads a u32-length-prefixed list of (K,V) pairs into a map.
func DecodeMap[K comparable, V any](
	b wire.Buffer,
	decKey func(wire.Buffer) (K, error),
	decVal func(wire.Buffer) (V, error),
) (map[K]V, error) {
	n, err := b.ReadU32()
	if err != nil {
		return nil, err
	}
	m := make(map[K]V, n)
	for i := uint32(0); i < n; i++ {
		k, err := decKey(b)
		if err != nil {
			return nil, err
		}
		v, err := decVal(b)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

func lessU8(a, b uint8) bool { return a < b }

func encodeU8(b wire.Buffer, v uint8) error { return b.WriteU8(v) }
func decodeU8(b wire.Buffer) (uint8, error) { return b.ReadU8() }

func encodeU32(b wire.Buffer, v uint32) error { return b.WriteU32(v) }
func decodeU32(b wire.Buffer) (uint32, error) { return b.ReadU32() }
