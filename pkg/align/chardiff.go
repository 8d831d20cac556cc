package align

// charOpKind classifies one opcode of a character-level diff.
type charOpKind int

const (
	charEqual charOpKind = iota
	charReplace
	charDelete
	charInsert
)

// charOp is a single opcode over two rune slices a and b: the half-open rune
// ranges [A1, A2) of a and [B1, B2) of b it covers. For charDelete the b range
// is empty, for charInsert the a range is empty, and for charReplace both are
// non-empty.
type charOp struct {
	kind charOpKind
	A1   int
	A2   int
	B1   int
	B2   int
}

// charDiff computes a longest-common-subsequence opcode diff between the rune
// slices a and b, in the style of a sequence matcher: the gaps between
// consecutive LCS anchor points become replace, delete, or insert opcodes
// depending on which side has unmatched runes, and consecutive matched runes
// coalesce into single equal opcodes.
func charDiff(a, b []rune) []charOp {
	n, m := len(a), len(b)

	// LCS length table.
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []charOp

	// emitGap classifies the unmatched region a[a1:a2) / b[b1:b2).
	emitGap := func(a1, a2, b1, b2 int) {
		switch {
		case a1 < a2 && b1 < b2:
			ops = append(ops, charOp{kind: charReplace, A1: a1, A2: a2, B1: b1, B2: b2})
		case a1 < a2:
			ops = append(ops, charOp{kind: charDelete, A1: a1, A2: a2, B1: b1, B2: b1})
		case b1 < b2:
			ops = append(ops, charOp{kind: charInsert, A1: a1, A2: a1, B1: b1, B2: b2})
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		if a[i] == b[j] {
			// Extend the run of matches as far as it goes.
			si, sj := i, j
			for i < n && j < m && a[i] == b[j] {
				i++
				j++
			}
			ops = append(ops, charOp{kind: charEqual, A1: si, A2: i, B1: sj, B2: j})
			continue
		}
		// Skip one rune on the side that preserves the LCS, accumulating the
		// gap until the next anchor.
		gi, gj := i, j
		for i < n && j < m && a[i] != b[j] {
			if lcs[i+1][j] >= lcs[i][j+1] {
				i++
			} else {
				j++
			}
		}
		emitGap(gi, i, gj, j)
	}
	emitGap(i, n, j, m)

	return ops
}
