package chunkstore

// spaceAccountant tracks used capacity against the store's ceiling.
// Credits use the encoded size at acceptance time; debits use the actual
// on-disk size of the file being replaced or removed, so the counter
// absorbs any drift between accepted and completed writes.
type spaceAccountant struct {
	used uint64
	max  uint64
}

// check rejects a put that would push usage past the ceiling. It runs
// strictly before any disk mutation or counter update.
func (a *spaceAccountant) check(size uint64) error {
	if a.used+size > a.max {
		return ErrNotEnoughSpace
	}
	return nil
}

func (a *spaceAccountant) credit(size uint64) {
	a.used += size
}

// debit clamps at zero: a failed background write may leave the counter
// ahead of what is actually on disk.
func (a *spaceAccountant) debit(size uint64) {
	if size > a.used {
		size = a.used
	}
	a.used -= size
}
