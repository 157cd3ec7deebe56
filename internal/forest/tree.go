package forest

import (
	"forestdash/internal/domain"
)

const RootID = "root"

// PathTrace lists the node ids visited from the root to a leaf.
type PathTrace []string

type Leaf struct {
	ID       string       `json:"id"`
	PathSeed int          `json:"path_seed"`
	Class    domain.Class `json:"class"`
	Label    string       `json:"label"`
}

// Tree is a depth-2 synthetic tree: Root splits into Right (tested when the
// root holds) and Left, each ending in two leaves.
type Tree struct {
	Seed   int           `json:"seed"`
	Root   ConditionSpec `json:"root"`
	Right  ConditionSpec `json:"right"`
	Left   ConditionSpec `json:"left"`
	Leaves [4]Leaf       `json:"leaves"`
}

type TreeResult struct {
	Seed  int          `json:"seed"`
	Class domain.Class `json:"class"`
	Label string       `json:"label"`
	Path  PathTrace    `json:"path"`
}

func leafClass(pathSeed int) domain.Class {
	if pathSeed%3 == 0 {
		return domain.Negative
	}
	return domain.Positive
}

func gt(feature string) string { return feature + ">" }
func le(feature string) string { return feature + "<=" }

// BuildTree lays out the tree a seed produces for a domain.
func BuildTree(d *domain.Domain, seed int) Tree {
	n := len(d.Features)
	pick := func(off int) domain.Feature { return d.Features[((seed+off)%n+n)%n] }
	op1, op2, op3 := pick(0), pick(1), pick(2)

	t := Tree{
		Seed:  seed,
		Root:  ConditionFor(seed, op1),
		Right: ConditionFor(seed, op2),
		Left:  ConditionFor(seed, op3),
	}
	ids := [4]string{
		gt(op1.Name) + "_" + gt(op2.Name),
		gt(op1.Name) + "_" + le(op2.Name),
		le(op1.Name) + "_" + gt(op3.Name),
		le(op1.Name) + "_" + le(op3.Name),
	}
	for i := range t.Leaves {
		ps := seed + i + 1
		c := leafClass(ps)
		t.Leaves[i] = Leaf{ID: ids[i], PathSeed: ps, Class: c, Label: d.Label(c)}
	}
	return t
}

// Evaluate walks the record down the tree.
func (t Tree) Evaluate(r domain.Record) TreeResult {
	path := PathTrace{RootID}
	var leaf Leaf
	if t.Root.Holds(r) {
		path = append(path, gt(t.Root.Feature))
		if t.Right.Holds(r) {
			leaf = t.Leaves[0]
		} else {
			leaf = t.Leaves[1]
		}
	} else {
		path = append(path, le(t.Root.Feature))
		if t.Left.Holds(r) {
			leaf = t.Leaves[2]
		} else {
			leaf = t.Leaves[3]
		}
	}
	path = append(path, leaf.ID)
	return TreeResult{Seed: t.Seed, Class: leaf.Class, Label: leaf.Label, Path: path}
}
