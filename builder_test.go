package bptree_test

import (
	"strings"

	"github.com/bsm/bptree"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Construct", func() {
	const blockSize = 64

	It("should build an empty tree", func() {
		storage := bptree.NewMemStorage(blockSize)
		Expect(bptree.Construct(storage, nil, nil)).To(Succeed())

		_, err := bptree.Lookup(storage, 42)
		Expect(err).To(MatchError(bptree.ErrNotFound))
	})

	It("should reject out-of-order entries", func() {
		storage := bptree.NewMemStorage(blockSize)
		entries := []bptree.Entry{
			{Key: 20, Value: []byte("a")},
			{Key: 19, Value: []byte("b")},
		}
		err := bptree.Construct(storage, entries, nil)
		Expect(err).To(MatchError("bptree: out-of-order entry, 19 must be > 20"))
	})

	It("should reject duplicate keys", func() {
		storage := bptree.NewMemStorage(blockSize)
		entries := []bptree.Entry{
			{Key: 20, Value: []byte("a")},
			{Key: 20, Value: []byte("b")},
		}
		err := bptree.Construct(storage, entries, nil)
		Expect(err).To(MatchError("bptree: out-of-order entry, 20 must be > 20"))
	})

	It("should write every block at exactly the block size", func() {
		storage := bptree.NewMemStorage(blockSize)
		entries := make([]bptree.Entry, 0, 40)
		for i := 0; i < 40; i++ {
			entries = append(entries, bptree.Entry{
				Key:   uint64(i),
				Value: []byte(strings.Repeat("x", 37)),
			})
		}
		Expect(bptree.Construct(storage, entries, nil)).To(Succeed())

		for addr := uint64(1); addr < storage.Size()/blockSize+2; addr++ {
			block, err := storage.Get(addr)
			if err != nil {
				continue
			}
			Expect(block).To(HaveLen(blockSize))
		}
	})

	It("should build with snappy compression and read it back", func() {
		storage := bptree.NewMemStorage(blockSize)
		payload := []byte(strings.Repeat("compressible-", 40))
		entries := []bptree.Entry{{Key: 1, Value: payload}}

		opts := &bptree.BuildOptions{Compression: bptree.SnappyCompression}
		Expect(bptree.Construct(storage, entries, opts)).To(Succeed())

		got, err := bptree.Lookup(storage, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(payload))
	})
})
