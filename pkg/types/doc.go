/*
Package types defines the core data structures shared across SFS: the
Object -> Version -> Segment -> BlobReference tree that the metadata store
indexes, and the Node/Volume/ServiceDef records the cluster directory and
consensus log operate on.

# Nesting and navigation

Each BlobReference holds a non-owning back-pointer to its Segment via
SetSegment/Segment rather than a full ownership cycle, so the tree can be
built bottom-up (BlobReference before Segment exists) and walked top-down
without retain cycles complicating garbage collection.

# Optionality

Every field that may be unset during a staged write (VolumeID, Position,
WriteLength, ReadLength, the two SHA-512 slices) is a pointer or a
possibly-nil slice, not a zero value. Collapsing "unset" and "zero-value
present" breaks the verification invariants in pkg/verify — a nil
WriteLength and a present zero length are different states. The two SHA-512
slices count as present only when they hold exactly 64 bytes
(HasWriteSHA512, HasReadSHA512); nil, empty and short slices are all unset.
*/
package types
