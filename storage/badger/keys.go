package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/stashlabs/stash/core"
)

// Key prefixes for different data types
const (
	itemRecordPrefix  = "itmrec"
	itemOwnerPrefix   = "itmown"
	itemDatePrefix    = "itmdate"
	itemIDSeq         = "itmrecseq"
	embeddingPrefix   = "embrec"
	embeddingOwnerPfx = "embown"
)

// makeItemKey generates a key for an item by ID.
func makeItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemRecordPrefix, id))
}

// makeItemOwnerKey generates a composite key for the per-owner index.
// Format: prefix:owner:timestamp:id
func makeItemOwnerKey(ownerID string, timestamp time.Time, id core.ID) []byte {
	prefix := itemOwnerPrefix + ":" + ownerID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16) // 8 bytes timestamp + 8 bytes ID
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeItemOwnerPrefix generates the iteration prefix for one owner's index.
func makeItemOwnerPrefix(ownerID string) []byte {
	return []byte(itemOwnerPrefix + ":" + ownerID + ":")
}

// makeItemDateKey generates a composite key for the global date index.
// Format: prefix:timestamp:id
func makeItemDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := itemDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialItemDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialItemDateKey(timestamp time.Time) []byte {
	prefix := itemDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeEmbeddingKey generates a key for an embedding record by item ID.
func makeEmbeddingKey(itemID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, itemID))
}

// makeEmbeddingOwnerKey generates a composite key for the embedding owner
// index. Format: prefix:owner:itemID
func makeEmbeddingOwnerKey(ownerID string, itemID core.ID) []byte {
	prefix := embeddingOwnerPfx + ":" + ownerID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(itemID))
	return buf
}

// makeEmbeddingOwnerPrefix generates the iteration prefix for one owner's
// embedding index.
func makeEmbeddingOwnerPrefix(ownerID string) []byte {
	return []byte(embeddingOwnerPfx + ":" + ownerID + ":")
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", processorType))
}
