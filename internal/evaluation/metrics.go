package evaluation

import (
	"math"
	"sort"
)

// Point is one (x, y) sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

func ProbaToPred(ps []float64, thr float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= thr {
			out[i] = 1
		}
	}
	return out
}

func Confusion(y []int, ps []float64, thr float64) (tp, fp, tn, fn int) {
	for i := range y {
		pred := 0
		if ps[i] >= thr {
			pred = 1
		}
		switch {
		case pred == 1 && y[i] == 1:
			tp++
		case pred == 1 && y[i] == 0:
			fp++
		case pred == 0 && y[i] == 0:
			tn++
		case pred == 0 && y[i] == 1:
			fn++
		}
	}
	return
}

// ConfusionMatrix lays counts out as [[tn, fp], [fn, tp]], rows actual.
func ConfusionMatrix(y []int, ps []float64, thr float64) [][]int {
	tp, fp, tn, fn := Confusion(y, ps, thr)
	return [][]int{{tn, fp}, {fn, tp}}
}

func PRF1(y []int, ps []float64, thr float64) (precision, recall, f1 float64) {
	tp, fp, _, fn := Confusion(y, ps, thr)
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

type scored struct {
	s float64
	y int
}

func sortedByScore(y []int, ps []float64) []scored {
	pairs := make([]scored, len(y))
	for i := range y {
		pairs[i] = scored{ps[i], y[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
	return pairs
}

// ROCCurve returns (fpr, tpr) points from the strictest threshold down.
func ROCCurve(y []int, ps []float64) []Point {
	pairs := sortedByScore(y, ps)
	var pos, neg int
	for _, p := range pairs {
		if p.y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil
	}
	out := []Point{{0, 0}}
	tp, fp := 0, 0
	for i := 0; i < len(pairs); i++ {
		if pairs[i].y == 1 {
			tp++
		} else {
			fp++
		}
		if i+1 < len(pairs) && pairs[i+1].s == pairs[i].s {
			continue
		}
		out = append(out, Point{float64(fp) / float64(neg), float64(tp) / float64(pos)})
	}
	return out
}

func ROCAUC(y []int, ps []float64) float64 {
	pts := ROCCurve(y, ps)
	if len(pts) == 0 {
		return 0
	}
	var auc float64
	for i := 1; i < len(pts); i++ {
		auc += (pts[i].X - pts[i-1].X) * (pts[i].Y + pts[i-1].Y) / 2.0
	}
	return auc
}

// PRCurve returns (recall, precision) points as the threshold drops.
func PRCurve(y []int, ps []float64) []Point {
	pairs := sortedByScore(y, ps)
	var tp, fp, fn int
	for _, p := range pairs {
		if p.y == 1 {
			fn++
		}
	}
	if fn == 0 {
		return nil
	}
	out := make([]Point, 0, len(pairs))
	for i := 0; i < len(pairs); i++ {
		if pairs[i].y == 1 {
			tp++
			fn--
		} else {
			fp++
		}
		var prec, rec float64
		if tp+fp > 0 {
			prec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rec = float64(tp) / float64(tp+fn)
		}
		out = append(out, Point{rec, prec})
	}
	return out
}

func PRAUC(y []int, ps []float64) float64 {
	var prevRec, auc float64
	for _, p := range PRCurve(y, ps) {
		auc += (p.X - prevRec) * p.Y
		prevRec = p.X
	}
	return auc
}

func BestThresholdF1(y []int, ps []float64) (thr float64, best float64) {
	if len(ps) == 0 {
		return 0.5, 0
	}
	steps := 200
	best = -1
	thr = 0.5
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		_, _, f1 := PRF1(y, ps, t)
		if f1 > best {
			best = f1
			thr = t
		}
	}
	return
}

// Regression scores.

func R2(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range y {
		m += v
	}
	m /= float64(len(y))
	var ssRes, ssTot float64
	for i := range y {
		ssRes += (y[i] - pred[i]) * (y[i] - pred[i])
		ssTot += (y[i] - m) * (y[i] - m)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func RMSE(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		s += (y[i] - pred[i]) * (y[i] - pred[i])
	}
	return math.Sqrt(s / float64(len(y)))
}

func MAE(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		s += math.Abs(y[i] - pred[i])
	}
	return s / float64(len(y))
}
