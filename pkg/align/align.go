package align

import "strings"

// OpKind classifies a single alignment operation.
type OpKind string

const (
	// OpEqual marks a reference token matched by an identical (case-insensitive)
	// hypothesis token.
	OpEqual OpKind = "equal"

	// OpSubstitute marks a reference token replaced by a different hypothesis
	// token.
	OpSubstitute OpKind = "substitute"

	// OpDelete marks a reference token with no hypothesis counterpart — a word
	// the speaker dropped.
	OpDelete OpKind = "delete"

	// OpInsert marks a hypothesis token with no reference counterpart — a word
	// the speaker added.
	OpInsert OpKind = "insert"
)

// Op is one step of a token alignment. Ref and Hyp are indices into the
// reference and hypothesis token slices passed to [Align]. For OpEqual and
// OpSubstitute both indices are valid; OpDelete carries only Ref and OpInsert
// carries only Hyp (the unused index is -1).
type Op struct {
	Kind OpKind
	Ref  int
	Hyp  int
}

// backPointer records how a DP cell was reached so the optimal alignment can
// be reconstructed.
type backPointer struct {
	kind OpKind
	pi   int
	pj   int
}

// Align computes a minimum-edit-distance alignment between the reference and
// hypothesis token sequences using the classic Levenshtein dynamic program
// over tokens (unit cost for insert, delete, and substitute; zero cost for a
// case-insensitive exact match).
//
// When several paths share the minimum cost, diagonal moves (equal or
// substitute) are preferred over deletions, which are preferred over
// insertions. This keeps the alignment balanced when the two texts repeat
// ambiguous words; the choice affects which spans get drawn, never the edit
// distance itself.
//
// The returned sequence covers every reference and hypothesis token exactly
// once, in forward order. Both inputs empty yields an empty result; an empty
// reference yields all OpInsert and an empty hypothesis all OpDelete.
func Align(ref, hyp []Token) []Op {
	n, m := len(ref), len(hyp)

	cost := make([][]int, n+1)
	back := make([][]backPointer, n+1)
	for i := range cost {
		cost[i] = make([]int, m+1)
		back[i] = make([]backPointer, m+1)
	}

	for i := 1; i <= n; i++ {
		cost[i][0] = i
		back[i][0] = backPointer{kind: OpDelete, pi: i - 1, pj: 0}
	}
	for j := 1; j <= m; j++ {
		cost[0][j] = j
		back[0][j] = backPointer{kind: OpInsert, pi: 0, pj: j - 1}
	}

	for i := 1; i <= n; i++ {
		ri := strings.ToLower(ref[i-1].Text)
		for j := 1; j <= m; j++ {
			hj := strings.ToLower(hyp[j-1].Text)

			subCost := 1
			if ri == hj {
				subCost = 0
			}

			del := cost[i-1][j] + 1
			ins := cost[i][j-1] + 1
			diag := cost[i-1][j-1] + subCost

			best := diag
			if del < best {
				best = del
			}
			if ins < best {
				best = ins
			}
			cost[i][j] = best

			// Tie-break order: diagonal, then delete, then insert.
			switch {
			case best == diag:
				kind := OpSubstitute
				if subCost == 0 {
					kind = OpEqual
				}
				back[i][j] = backPointer{kind: kind, pi: i - 1, pj: j - 1}
			case best == del:
				back[i][j] = backPointer{kind: OpDelete, pi: i - 1, pj: j}
			default:
				back[i][j] = backPointer{kind: OpInsert, pi: i, pj: j - 1}
			}
		}
	}

	// Walk back-pointers from (n, m) to the origin, then reverse.
	var ops []Op
	i, j := n, m
	for i > 0 || j > 0 {
		bp := back[i][j]
		switch bp.kind {
		case OpEqual, OpSubstitute:
			ops = append(ops, Op{Kind: bp.kind, Ref: i - 1, Hyp: j - 1})
			i, j = i-1, j-1
		case OpDelete:
			ops = append(ops, Op{Kind: OpDelete, Ref: i - 1, Hyp: -1})
			i--
		case OpInsert:
			ops = append(ops, Op{Kind: OpInsert, Ref: -1, Hyp: j - 1})
			j--
		}
	}

	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}
	return ops
}

// AlignWords aligns two plain word slices, for callers that already hold
// normalised words without display offsets (metric computation, mainly).
// Token offsets in the synthesised tokens are meaningless; only the returned
// op kinds and indices matter.
func AlignWords(ref, hyp []string) []Op {
	return Align(wordTokens(ref), wordTokens(hyp))
}

func wordTokens(words []string) []Token {
	out := make([]Token, len(words))
	for i, w := range words {
		out[i] = Token{Text: w}
	}
	return out
}

// EditDistance returns the number of non-equal operations in ops — the token
// edit distance the alignment realises. Substitutions, deletions, and
// insertions each count one.
func EditDistance(ops []Op) int {
	d := 0
	for _, op := range ops {
		if op.Kind != OpEqual {
			d++
		}
	}
	return d
}
