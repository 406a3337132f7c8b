package dataset

import (
	"context"
	"fmt"
)

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	}
	return fmt.Sprintf("JoinType(%d)", int(t))
}

func ParseJoinType(s string) (JoinType, error) {
	switch s {
	case "inner", "":
		return InnerJoin, nil
	case "left":
		return LeftJoin, nil
	}
	return InnerJoin, fmt.Errorf("invalid join type '%s', must be one of: inner, left", s)
}

// Joined is a single output row of a join. Right is nil for an unmatched left row of a [LeftJoin]
type Joined[L, R any] struct {
	Left  L
	Right *R
}

// HashJoin joins left against right, building a hash table from the whole of right.
// The key funcs return ok=false for a null key, a null key never matches.
// A left row matching n right rows produces n output rows. The partitioning of left is preserved
func HashJoin[L, R any, K comparable](ctx context.Context, left *Dataset[L], right *Dataset[R], leftKey func(L) (K, bool), rightKey func(R) (K, bool), joinType JoinType) (*Dataset[Joined[L, R]], error) {
	table := make(map[K][]*R)
	for _, p := range right.partitions {
		for i := range p {
			r := &p[i]
			if k, ok := rightKey(*r); ok {
				table[k] = append(table[k], r)
			}
		}
	}

	return FlatMap(ctx, left, func(l L) ([]Joined[L, R], error) {
		var matches []*R
		if k, ok := leftKey(l); ok {
			matches = table[k]
		}
		if len(matches) == 0 {
			if joinType == LeftJoin {
				return []Joined[L, R]{{Left: l}}, nil
			}
			return nil, nil
		}
		res := make([]Joined[L, R], len(matches))
		for i, r := range matches {
			res[i] = Joined[L, R]{Left: l, Right: r}
		}
		return res, nil
	})
}
