package bptree

import (
	"fmt"
	"sort"

	"github.com/golang/snappy"
)

// Lookup descends from the root through exactly height node blocks to
// find the leaf-parent entry for key, then reassembles the payload from
// the data chain it points to. It returns ErrNotFound if key is absent.
func Lookup(storage Storage, key uint64) ([]byte, error) {
	root, height, compression, err := readMeta(storage)
	if err != nil {
		return nil, err
	}
	if root == storage.Empty() {
		return nil, ErrNotFound
	}

	addr := root
	for depth := 0; depth < height; depth++ {
		block, err := storage.Get(addr)
		if err != nil {
			return nil, fmt.Errorf("bptree: reading node block at %d: %w", addr, err)
		}

		pairs, err := decodeNodeBlock(block)
		if err != nil {
			return nil, err
		}

		idx, ok := searchFloor(pairs, key)
		if !ok {
			return nil, ErrNotFound
		}
		if depth == height-1 && pairs[idx].Key != key {
			return nil, ErrNotFound
		}

		addr = pairs[idx].Child
	}

	payload, err := readDataChain(storage, addr)
	if err != nil {
		return nil, err
	}

	if compression == SnappyCompression {
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("bptree: decompressing payload: %w", err)
		}
		return decoded, nil
	}
	return payload, nil
}

// searchFloor returns the index of the rightmost entry whose key is <=
// key, per the left-biased key invariant: all keys reachable from
// pairs[i].Child are >= pairs[i].Key. ok is false if key is smaller
// than every entry's key.
func searchFloor(pairs []NodePair, key uint64) (idx int, ok bool) {
	i := sort.Search(len(pairs), func(i int) bool { return pairs[i].Key > key })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// readDataChain walks the chain starting at head, concatenating
// fragments and trimming the result to the total length recorded in the
// head block.
func readDataChain(storage Storage, head uint64) ([]byte, error) {
	block, err := storage.Get(head)
	if err != nil {
		return nil, fmt.Errorf("bptree: reading data block at %d: %w", head, err)
	}
	fragment, next, total := decodeHeadDataBlock(block)

	out := make([]byte, 0, total)
	out = append(out, fragment...)

	for next != storage.Empty() {
		block, err := storage.Get(next)
		if err != nil {
			return nil, fmt.Errorf("bptree: reading data block at %d: %w", next, err)
		}
		var frag []byte
		frag, next = decodeDataBlock(block)
		out = append(out, frag...)
	}

	if uint64(len(out)) > total {
		out = out[:total]
	}
	return out, nil
}

// ReadDataBlock reads the data block at address and returns its raw
// follow-on layout: the untrimmed B-8 byte fragment (callers know the
// length from context) and its next pointer. Exposed for testing.
func ReadDataBlock(storage Storage, address uint64) (fragment []byte, next uint64, err error) {
	block, err := storage.Get(address)
	if err != nil {
		return nil, 0, err
	}
	fragment, next = decodeDataBlock(block)
	return fragment, next, nil
}

// CreateNodeBlock encodes pairs as a node block, writes it to a freshly
// allocated address and returns that address. Exposed for testing.
func CreateNodeBlock(storage Storage, pairs []NodePair) (uint64, error) {
	return writeNodeBlock(storage, pairs)
}

// ReadNodeBlock reads and decodes the node block at address. Exposed for
// testing.
func ReadNodeBlock(storage Storage, address uint64) ([]NodePair, error) {
	block, err := storage.Get(address)
	if err != nil {
		return nil, err
	}
	return decodeNodeBlock(block)
}
