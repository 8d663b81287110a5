package bptree

import "fmt"

const (
	memEmptyAddress uint64 = 0
	memMetaAddress  uint64 = 1
)

// MemStorage is a map-backed, in-memory Storage. It is the simplest
// possible adapter and is not safe for concurrent use: readers sharing
// a MemStorage after construction must synchronize externally.
type MemStorage struct {
	blockSize int
	blocks    map[uint64][]byte
	next      uint64
}

// NewMemStorage creates an empty in-memory adapter with the given block
// size, pre-reserving the empty and meta addresses.
func NewMemStorage(blockSize int) *MemStorage {
	return &MemStorage{
		blockSize: blockSize,
		blocks:    make(map[uint64][]byte),
		next:      memMetaAddress + 1,
	}
}

func (m *MemStorage) checkAddress(address uint64) error {
	if address == memEmptyAddress {
		return fmt.Errorf("bptree: address %d is the empty sentinel", address)
	}
	if address == memMetaAddress {
		return nil
	}
	if address < memMetaAddress+1 || address >= m.next {
		return fmt.Errorf("bptree: address %d was never allocated", address)
	}
	return nil
}

// Get implements Storage.
func (m *MemStorage) Get(address uint64) ([]byte, error) {
	if err := m.checkAddress(address); err != nil {
		return nil, err
	}
	block, ok := m.blocks[address]
	if !ok {
		return nil, fmt.Errorf("bptree: address %d was never written", address)
	}
	return block, nil
}

// Set implements Storage.
func (m *MemStorage) Set(address uint64, block []byte) error {
	if err := m.checkAddress(address); err != nil {
		return err
	}
	if len(block) != m.blockSize {
		return fmt.Errorf("bptree: block is %d bytes, want %d", len(block), m.blockSize)
	}
	cp := make([]byte, m.blockSize)
	copy(cp, block)
	m.blocks[address] = cp
	return nil
}

// Malloc implements Storage.
func (m *MemStorage) Malloc() (uint64, error) {
	addr := m.next
	m.next++
	return addr, nil
}

// Empty implements Storage.
func (m *MemStorage) Empty() uint64 { return memEmptyAddress }

// Meta implements Storage.
func (m *MemStorage) Meta() uint64 { return memMetaAddress }

// Size implements Storage.
func (m *MemStorage) Size() uint64 {
	return uint64(len(m.blocks)) * uint64(m.blockSize)
}

// BlockSize implements Storage.
func (m *MemStorage) BlockSize() int { return m.blockSize }
