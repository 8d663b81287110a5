package bptree

import (
	"encoding/binary"
	"fmt"
)

const (
	addrSize     = 8  // bytes per address/key field
	nodePairSize = 2 * addrSize
	headExtra    = 2 * addrSize // next + total_length
)

// NodePair is a single (key, child) entry within a node block.
type NodePair struct {
	Key   uint64
	Child uint64
}

// maxEntries returns the fan-out F: the maximum number of (key, child)
// pairs that fit in one node block of the given size.
func maxEntries(blockSize int) int {
	return (blockSize - addrSize) / nodePairSize
}

// encodeDataBlock serializes a follow-on data block: an 8-byte next
// pointer followed by the fragment, zero-padded to blockSize.
func encodeDataBlock(fragment []byte, next uint64, blockSize int) ([]byte, error) {
	if len(fragment) > blockSize-addrSize {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrEncodingOverflow, len(fragment), blockSize-addrSize)
	}
	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:addrSize], next)
	copy(block[addrSize:], fragment)
	return block, nil
}

// decodeDataBlock is the inverse of encodeDataBlock. It returns the raw
// blockSize-8 byte fragment; the caller trims it based on the known
// total payload length.
func decodeDataBlock(block []byte) (fragment []byte, next uint64) {
	next = binary.LittleEndian.Uint64(block[0:addrSize])
	fragment = block[addrSize:]
	return fragment, next
}

// encodeHeadDataBlock serializes the head block of a chain: next pointer,
// total (possibly compressed) payload length, then the fragment.
func encodeHeadDataBlock(fragment []byte, next, totalLength uint64, blockSize int) ([]byte, error) {
	if len(fragment) > blockSize-headExtra {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrEncodingOverflow, len(fragment), blockSize-headExtra)
	}
	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:addrSize], next)
	binary.LittleEndian.PutUint64(block[addrSize:headExtra], totalLength)
	copy(block[headExtra:], fragment)
	return block, nil
}

// decodeHeadDataBlock is the inverse of encodeHeadDataBlock.
func decodeHeadDataBlock(block []byte) (fragment []byte, next, totalLength uint64) {
	next = binary.LittleEndian.Uint64(block[0:addrSize])
	totalLength = binary.LittleEndian.Uint64(block[addrSize:headExtra])
	fragment = block[headExtra:]
	return fragment, next, totalLength
}

// encodeNodeBlock serializes a count-prefixed array of (key, child) pairs.
func encodeNodeBlock(pairs []NodePair, blockSize int) ([]byte, error) {
	if max := maxEntries(blockSize); len(pairs) > max {
		return nil, fmt.Errorf("%w: %d entries, fan-out %d", ErrNodeOverflow, len(pairs), max)
	}

	block := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(block[0:addrSize], uint64(len(pairs)))

	off := addrSize
	for _, p := range pairs {
		binary.LittleEndian.PutUint64(block[off:off+addrSize], p.Key)
		binary.LittleEndian.PutUint64(block[off+addrSize:off+nodePairSize], p.Child)
		off += nodePairSize
	}
	return block, nil
}

// decodeNodeBlock is the inverse of encodeNodeBlock. It ignores tail
// bytes beyond the encoded pairs.
func decodeNodeBlock(block []byte) ([]NodePair, error) {
	blockSize := len(block)
	count := binary.LittleEndian.Uint64(block[0:addrSize])

	max := uint64(maxEntries(blockSize))
	if count > max || addrSize+nodePairSize*count > uint64(blockSize) {
		return nil, fmt.Errorf("%w: count %d exceeds fan-out %d", ErrMalformedBlock, count, max)
	}

	pairs := make([]NodePair, count)
	off := addrSize
	for i := range pairs {
		pairs[i].Key = binary.LittleEndian.Uint64(block[off : off+addrSize])
		pairs[i].Child = binary.LittleEndian.Uint64(block[off+addrSize : off+nodePairSize])
		off += nodePairSize
	}
	return pairs, nil
}
