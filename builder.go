package bptree

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
)

// Construct bulk-loads a tree from entries, which must be strictly
// ascending by Key, and writes its root into storage's meta block.
// entries may be empty, in which case Lookup will report ErrNotFound
// for every key.
func Construct(storage Storage, entries []Entry, opts *BuildOptions) error {
	opts = opts.norm()

	leaves := make([]NodePair, 0, len(entries))
	var prevKey uint64
	for i, e := range entries {
		if i > 0 && e.Key <= prevKey {
			return fmt.Errorf("bptree: out-of-order entry, %d must be > %d", e.Key, prevKey)
		}
		prevKey = e.Key

		head, err := buildDataChain(storage, e.Value, opts.Compression)
		if err != nil {
			return fmt.Errorf("bptree: building chain for key %d: %w", e.Key, err)
		}
		leaves = append(leaves, NodePair{Key: e.Key, Child: head})
	}

	root := storage.Empty()
	height := 0

	if len(leaves) > 0 {
		var err error
		root, height, err = buildIndex(storage, leaves)
		if err != nil {
			return err
		}
	}

	return writeMeta(storage, root, height, opts.Compression)
}

// buildDataChain splits payload into a next-linked chain of data blocks
// and returns the address of the head block. The head block's fragment
// is B-16 bytes; every subsequent block's fragment is B-8 bytes. Pre-
// allocation happens before any block is written, since writing a block
// requires knowing its successor's address.
func buildDataChain(storage Storage, payload []byte, compression Compression) (uint64, error) {
	if compression == SnappyCompression {
		payload = snappy.Encode(nil, payload)
	}

	blockSize := storage.BlockSize()
	headCap := blockSize - headExtra
	followCap := blockSize - addrSize

	total := len(payload)
	count := 1
	if total > headCap {
		count += (total - headCap + followCap - 1) / followCap
	}

	addrs := make([]uint64, count)
	for i := range addrs {
		addr, err := storage.Malloc()
		if err != nil {
			return 0, err
		}
		addrs[i] = addr
	}

	pos := 0
	for i, addr := range addrs {
		next := storage.Empty()
		if i+1 < count {
			next = addrs[i+1]
		}

		var block []byte
		var err error
		if i == 0 {
			end := pos + headCap
			if end > total {
				end = total
			}
			block, err = encodeHeadDataBlock(payload[pos:end], next, uint64(total), blockSize)
			pos = end
		} else {
			end := pos + followCap
			if end > total {
				end = total
			}
			block, err = encodeDataBlock(payload[pos:end], next, blockSize)
			pos = end
		}
		if err != nil {
			return 0, err
		}
		if err := storage.Set(addr, block); err != nil {
			return 0, err
		}
	}

	return addrs[0], nil
}

// buildIndex constructs successive node-block layers, bottom-up, from a
// sorted list of (key, child) leaves, until a single root block remains.
// It returns the root's address and the tree's height: the number of
// node-block levels between the root and the data chains.
func buildIndex(storage Storage, leaves []NodePair) (root uint64, height int, err error) {
	fanout := maxEntries(storage.BlockSize())
	current := leaves

	for len(current) > fanout {
		groups := partitionGroups(current, fanout)
		next := make([]NodePair, 0, len(groups))

		for _, g := range groups {
			addr, err := writeNodeBlock(storage, g)
			if err != nil {
				return 0, 0, err
			}
			next = append(next, NodePair{Key: g[0].Key, Child: addr})
		}

		current = next
		height++
	}

	addr, err := writeNodeBlock(storage, current)
	if err != nil {
		return 0, 0, err
	}
	height++

	return addr, height, nil
}

func writeNodeBlock(storage Storage, pairs []NodePair) (uint64, error) {
	block, err := encodeNodeBlock(pairs, storage.BlockSize())
	if err != nil {
		return 0, err
	}
	addr, err := storage.Malloc()
	if err != nil {
		return 0, err
	}
	if err := storage.Set(addr, block); err != nil {
		return 0, err
	}
	return addr, nil
}

// partitionGroups splits entries into consecutive groups of exactly
// fanout entries, except possibly the last group, which holds between
// ceil(fanout/2) and fanout entries. If the natural last group is
// smaller than that minimum, floor(fanout/2) entries are redistributed
// from the preceding group; if that redistribution would itself leave
// the preceding group short, the tail is emitted as a single
// undersized node instead.
func partitionGroups(entries []NodePair, fanout int) [][]NodePair {
	n := len(entries)
	if n <= fanout {
		return [][]NodePair{entries}
	}

	minTail := (fanout + 1) / 2 // ceil(fanout/2)

	var groups [][]NodePair
	i := 0
	for n-i > fanout {
		groups = append(groups, entries[i:i+fanout])
		i += fanout
	}
	tail := entries[i:]

	if len(tail) >= minTail {
		return append(groups, tail)
	}

	take := fanout / 2
	last := groups[len(groups)-1]
	if len(last)-take < minTail {
		return append(groups, tail)
	}

	groups[len(groups)-1] = last[:len(last)-take]
	merged := make([]NodePair, 0, take+len(tail))
	merged = append(merged, last[len(last)-take:]...)
	merged = append(merged, tail...)
	return append(groups, merged)
}

func writeMeta(storage Storage, root uint64, height int, compression Compression) error {
	block := make([]byte, storage.BlockSize())
	binary.LittleEndian.PutUint64(block[0:addrSize], root)
	binary.LittleEndian.PutUint64(block[addrSize:2*addrSize], uint64(height))
	block[2*addrSize] = byte(compression)
	return storage.Set(storage.Meta(), block)
}

func readMeta(storage Storage) (root uint64, height int, compression Compression, err error) {
	block, err := storage.Get(storage.Meta())
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bptree: reading meta block: %w", err)
	}
	root = binary.LittleEndian.Uint64(block[0:addrSize])
	height = int(binary.LittleEndian.Uint64(block[addrSize : 2*addrSize]))
	compression = Compression(block[2*addrSize])
	return root, height, compression, nil
}
