package bptree

import (
	"fmt"
	"os"
)

const (
	fileEmptyAddress uint64 = 0
	fileMetaAddress  uint64 = 1
)

// FileStorage is an os.File-backed Storage. Blocks are addressed by
// offset: block n lives at byte offset n*BlockSize(). Block 0 is the
// empty sentinel and is never meaningfully read; block 1 is the meta
// block. Malloc grows the file by exactly one block and hands back its
// index, so the file's own length is the sole record of what has been
// allocated.
type FileStorage struct {
	f         *os.File
	blockSize int
}

// OpenFileStorage opens (creating if necessary) a file-backed adapter at
// path with the given block size. If the file is empty, the empty and
// meta blocks are reserved immediately.
func OpenFileStorage(path string, blockSize int) (*FileStorage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("bptree: opening %s: %w", path, err)
	}

	fs := &FileStorage{f: f, blockSize: blockSize}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bptree: statting %s: %w", path, err)
	}

	reserved := int64(fileMetaAddress+1) * int64(blockSize)
	if info.Size() < reserved {
		if err := f.Truncate(reserved); err != nil {
			f.Close()
			return nil, fmt.Errorf("bptree: reserving header blocks: %w", err)
		}
	}
	return fs, nil
}

// Close closes the underlying file.
func (fs *FileStorage) Close() error { return fs.f.Close() }

func (fs *FileStorage) offset(address uint64) int64 {
	return int64(address) * int64(fs.blockSize)
}

func (fs *FileStorage) blockCount() (uint64, error) {
	info, err := fs.f.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()) / uint64(fs.blockSize), nil
}

func (fs *FileStorage) checkAddress(address uint64) error {
	if address == fileEmptyAddress {
		return fmt.Errorf("bptree: address %d is the empty sentinel", address)
	}
	n, err := fs.blockCount()
	if err != nil {
		return err
	}
	if address >= n {
		return fmt.Errorf("bptree: address %d was never allocated", address)
	}
	return nil
}

// Get implements Storage. It does not track which blocks have been
// written: an allocated block that was never written reads back as zeros
// rather than failing.
func (fs *FileStorage) Get(address uint64) ([]byte, error) {
	if err := fs.checkAddress(address); err != nil {
		return nil, err
	}
	block := make([]byte, fs.blockSize)
	if _, err := fs.f.ReadAt(block, fs.offset(address)); err != nil {
		return nil, fmt.Errorf("bptree: reading block %d: %w", address, err)
	}
	return block, nil
}

// Set implements Storage.
func (fs *FileStorage) Set(address uint64, block []byte) error {
	if err := fs.checkAddress(address); err != nil {
		return err
	}
	if len(block) != fs.blockSize {
		return fmt.Errorf("bptree: block is %d bytes, want %d", len(block), fs.blockSize)
	}
	if _, err := fs.f.WriteAt(block, fs.offset(address)); err != nil {
		return fmt.Errorf("bptree: writing block %d: %w", address, err)
	}
	return nil
}

// Malloc implements Storage.
func (fs *FileStorage) Malloc() (uint64, error) {
	n, err := fs.blockCount()
	if err != nil {
		return 0, err
	}
	if err := fs.f.Truncate(int64(n+1) * int64(fs.blockSize)); err != nil {
		return 0, fmt.Errorf("bptree: extending file: %w", err)
	}
	return n, nil
}

// Empty implements Storage.
func (fs *FileStorage) Empty() uint64 { return fileEmptyAddress }

// Meta implements Storage.
func (fs *FileStorage) Meta() uint64 { return fileMetaAddress }

// Size implements Storage.
func (fs *FileStorage) Size() uint64 {
	n, err := fs.blockCount()
	if err != nil {
		return 0
	}
	reserved := uint64(fileMetaAddress + 1)
	if n < reserved {
		return 0
	}
	return (n - reserved) * uint64(fs.blockSize)
}

// BlockSize implements Storage.
func (fs *FileStorage) BlockSize() int { return fs.blockSize }
