package campaign

import (
	"fmt"

	"collections-reconciliation-service/internal/models"
)

// MaxBatches caps the batch count a partition request may ask for
const MaxBatches = 50

// Partition splits a filtered contact set into at most k contiguous,
// non-overlapping slices in original order. Each slice holds ceil(n/k)
// records except a possibly shorter final slice; empty slices are dropped,
// so fewer than k batches come back when n < k. Concatenating the result
// in order reproduces the input exactly.
func Partition(contacts []*models.ContactRecord, k int) ([][]*models.ContactRecord, error) {
	if k < 1 || k > MaxBatches {
		return nil, fmt.Errorf("batch count must be between 1 and %d, got %d", MaxBatches, k)
	}

	n := len(contacts)
	if n == 0 {
		return nil, nil
	}

	size := (n + k - 1) / k

	var batches [][]*models.ContactRecord
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batches = append(batches, contacts[start:end])
	}

	return batches, nil
}
