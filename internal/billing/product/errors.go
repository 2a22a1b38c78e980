// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import "fmt"

// # Error Taxonomy
//
// Every catalog mutation that crosses into Dodo Payments can fail on the
// upstream side. Those failures are surfaced as distinct types so callers
// can tell a failed sync from a failed archive, while errors.Is/As still
// reach the underlying cause.

// SyncError reports that a catalog partition listing could not be
// retrieved. Partial progress committed before the failure is kept.
type SyncError struct {
	// Partition names the listing that failed: "active" or "archived".
	Partition string
	Cause     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("product: failed to sync %s partition: %v", e.Partition, e.Cause)
}

func (e *SyncError) Unwrap() error { return e.Cause }

// CreateError reports that the upstream create call failed.
// No local row is written in that case.
type CreateError struct {
	Cause error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("product: upstream create failed: %v", e.Cause)
}

func (e *CreateError) Unwrap() error { return e.Cause }

// ArchiveError reports that the upstream archive call failed.
// The local row is left untouched.
type ArchiveError struct {
	DodoProductID string
	Cause         error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("product: upstream archive of %s failed: %v", e.DodoProductID, e.Cause)
}

func (e *ArchiveError) Unwrap() error { return e.Cause }

// UnarchiveError reports that the upstream unarchive call failed.
// The local row is left untouched.
type UnarchiveError struct {
	DodoProductID string
	Cause         error
}

func (e *UnarchiveError) Error() string {
	return fmt.Sprintf("product: upstream unarchive of %s failed: %v", e.DodoProductID, e.Cause)
}

func (e *UnarchiveError) Unwrap() error { return e.Cause }
