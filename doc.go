/*
Package bptree contains a bulk-loaded, immutable B+ tree implementation
which operates entirely through an abstract, block-addressable Storage:
fixed-size reads and writes at allocator-issued addresses, never a byte
offset chosen by the caller.

A tree is built once from a sorted sequence of (key, payload) pairs and
is read-only thereafter. There is no insert, delete or rebalance.

Data Structure Documentation

Data block

A data block stores one fragment of a payload plus a pointer to the
next block in its chain. The head block of a chain additionally carries
the total length of the (possibly compressed) payload, so that trailing
zero padding in the final fragment can be trimmed on read.

	Head block:
	+--------------+----------------------+------------------------+
	| next (8B)    | total_length (8B)    | fragment (B-16 bytes)  |
	+--------------+----------------------+------------------------+

	Follow-on block:
	+--------------+-----------------------------------------------+
	| next (8B)    | fragment (B-8 bytes)                          |
	+--------------+-----------------------------------------------+

Node block

A node block stores a count-prefixed, key-sorted array of (key, child)
pairs. Every entry is 16 bytes: an 8-byte key followed by an 8-byte
child address.

	+-----------+------------------+------------------+-------+
	| count(8B) | key0(8) child0(8)| key1(8) child1(8)|  ...  |
	+-----------+------------------+------------------+-------+

Meta block

The reserved meta address holds the tree's root, its height (number of
node-block levels between the root and the data chains) and the
compression codec used to build it.

	+---------------+-----------------+-------------------+
	| root (8B)     | height (8B)     | compression (1B)  |
	+---------------+-----------------+-------------------+
*/
package bptree
