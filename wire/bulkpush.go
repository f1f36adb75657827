package wire

import "io"

// WriteBulkPushHeader sends the bulk_push header once per session
// (spec.md §6: the body is empty; the block stream follows immediately).
func WriteBulkPushHeader(w io.Writer) error {
	return WriteHeader(w, TypeBulkPush)
}
