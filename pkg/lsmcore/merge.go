package lsmcore

// MergeSort performs a k-way merge over tables, driven by each input
// table's Peek/Pop, emitting tables of size outputCapacity (the last one
// possibly short). Every emitted entry's write count is incremented
// exactly once by the Pop that moved it into the output, except in the
// single-input case: a single-table input is returned unchanged without
// incrementing any write counts, even though that differs from the
// k>1 case.
//
// Ties among equal keys are broken by lowest input index, making the
// merge stable with respect to input order.
func MergeSort(tables []*Table, outputCapacity int) ([]*Table, error) {
	if len(tables) == 0 {
		return nil, newInvariantError("MergeSort", ErrEmptyOverlap)
	}
	if outputCapacity <= 0 {
		return nil, newInvariantError("MergeSort", ErrNegativeCapacity)
	}
	if len(tables) == 1 {
		return tables, nil
	}

	peeks := make([]int64, len(tables))
	open := make([]bool, len(tables))
	remaining := 0
	for i, t := range tables {
		if v, ok := t.Peek(); ok {
			peeks[i] = v
			open[i] = true
			remaining++
		}
	}

	var out []*Table
	var batch []Entry
	batchMin, batchMax := int64(0), int64(0)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		nt := NewTable(batch, true)
		nt.minGen = batchMin
		nt.maxGen = batchMax
		out = append(out, nt)
		batch = nil
	}

	for remaining > 0 {
		minIdx := -1
		for i := range tables {
			if !open[i] {
				continue
			}
			if minIdx == -1 || peeks[i] < peeks[minIdx] {
				minIdx = i
			}
		}

		e, err := tables[minIdx].Pop()
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			batchMin = e.Gen
		}
		batchMax = e.Gen
		batch = append(batch, e)

		if len(batch) == outputCapacity {
			flush()
		}

		if v, ok := tables[minIdx].Peek(); ok {
			peeks[minIdx] = v
		} else {
			open[minIdx] = false
			remaining--
		}
	}
	flush()

	return out, nil
}
