package bptree

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("codec", func() {
	const blockSize = 64

	Describe("data blocks", func() {
		It("should round-trip a follow-on block", func() {
			block, err := encodeDataBlock([]byte("hello"), 7, blockSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(block).To(HaveLen(blockSize))

			fragment, next := decodeDataBlock(block)
			Expect(next).To(Equal(uint64(7)))
			Expect(fragment[:5]).To(Equal([]byte("hello")))
		})

		It("should round-trip a head block", func() {
			block, err := encodeHeadDataBlock([]byte("hi"), 9, 123, blockSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(block).To(HaveLen(blockSize))

			fragment, next, total := decodeHeadDataBlock(block)
			Expect(next).To(Equal(uint64(9)))
			Expect(total).To(Equal(uint64(123)))
			Expect(fragment[:2]).To(Equal([]byte("hi")))
		})

		It("should reject an oversized follow-on fragment", func() {
			big := make([]byte, blockSize-addrSize+1)
			_, err := encodeDataBlock(big, 0, blockSize)
			Expect(err).To(MatchError(ErrEncodingOverflow))
		})

		It("should reject an oversized head fragment", func() {
			big := make([]byte, blockSize-headExtra+1)
			_, err := encodeHeadDataBlock(big, 0, 0, blockSize)
			Expect(err).To(MatchError(ErrEncodingOverflow))
		})
	})

	Describe("node blocks", func() {
		fanout := maxEntries(blockSize)

		makePairs := func(n int) []NodePair {
			pairs := make([]NodePair, n)
			for i := range pairs {
				pairs[i] = NodePair{Key: uint64(i * 17), Child: uint64(i * 19)}
			}
			return pairs
		}

		It("should round-trip at maximum fan-out", func() {
			pairs := makePairs(fanout)
			block, err := encodeNodeBlock(pairs, blockSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(block).To(HaveLen(blockSize))

			got, err := decodeNodeBlock(block)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(pairs))
		})

		It("should round-trip an empty node", func() {
			block, err := encodeNodeBlock(nil, blockSize)
			Expect(err).NotTo(HaveOccurred())

			got, err := decodeNodeBlock(block)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})

		It("should reject more than fan-out entries", func() {
			_, err := encodeNodeBlock(makePairs(fanout+1), blockSize)
			Expect(err).To(MatchError(ErrNodeOverflow))
		})

		It("should reject a corrupt count field on decode", func() {
			block := make([]byte, blockSize)
			block[0] = 0xFF // count far beyond any valid fan-out
			_, err := decodeNodeBlock(block)
			Expect(err).To(MatchError(ErrMalformedBlock))
		})
	})

	It("computes fan-out from block size", func() {
		Expect(maxEntries(64)).To(Equal(3))
		Expect(maxEntries(4096)).To(Equal(255))
	})
})
