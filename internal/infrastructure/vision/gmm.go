package vision

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

var errNoSamples = errors.New("no samples for color model")

// maxModelSamples ограничивает выборку для k-means; лишние точки прореживаются с шагом.
const maxModelSamples = 20000

const covarianceRidge = 1.0

type gaussian struct {
	mean    [3]float64
	inv     [3][3]float64
	logNorm float64 // log(вес) - 0.5*log|2πΣ|
}

// colorModel смесь гауссиан в пространстве RGB.
type colorModel struct {
	comps []gaussian
}

// fitColorModel строит смесь из не более чем k компонент: k-means++ и несколько итераций Ллойда,
// затем ковариации по кластерам. Результат детерминирован при одинаковом rng.
func fitColorModel(samples [][3]float64, k int, rng *rand.Rand) (*colorModel, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	samples = thinSamples(samples, maxModelSamples)
	if k > len(samples) {
		k = len(samples)
	}

	centers := kmeansPlusPlus(samples, k, rng)
	assign := make([]int, len(samples))
	for iter := 0; iter < 10; iter++ {
		changed := false
		for i, s := range samples {
			if c := nearestCenter(centers, s); c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		sums := make([][3]float64, k)
		counts := make([]int, k)
		for i, s := range samples {
			c := assign[i]
			counts[c]++
			for d := 0; d < 3; d++ {
				sums[c][d] += s[d]
			}
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < 3; d++ {
				centers[c][d] = sums[c][d] / float64(counts[c])
			}
		}
		if !changed && iter > 0 {
			break
		}
	}

	model := &colorModel{}
	for c := 0; c < k; c++ {
		g, ok, err := clusterGaussian(samples, assign, c, centers[c])
		if err != nil {
			return nil, err
		}
		if ok {
			model.comps = append(model.comps, g)
		}
	}
	if len(model.comps) == 0 {
		return nil, errNoSamples
	}
	return model, nil
}

func clusterGaussian(samples [][3]float64, assign []int, c int, mean [3]float64) (gaussian, bool, error) {
	n := 0
	var cov [3][3]float64
	for i, s := range samples {
		if assign[i] != c {
			continue
		}
		n++
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				cov[a][b] += (s[a] - mean[a]) * (s[b] - mean[b])
			}
		}
	}
	if n == 0 {
		return gaussian{}, false, nil
	}

	sym := mat.NewSymDense(3, nil)
	for a := 0; a < 3; a++ {
		for b := a; b < 3; b++ {
			v := cov[a][b] / float64(n)
			if a == b {
				v += covarianceRidge
			}
			sym.SetSym(a, b, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return gaussian{}, false, fmt.Errorf("covariance of component %d is not positive definite", c)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return gaussian{}, false, fmt.Errorf("invert covariance: %w", err)
	}

	g := gaussian{mean: mean}
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			g.inv[a][b] = inv.At(a, b)
		}
	}
	weight := float64(n) / float64(len(samples))
	g.logNorm = math.Log(weight) - 1.5*math.Log(2*math.Pi) - 0.5*chol.LogDet()
	return g, true, nil
}

// logLikelihood логарифм плотности смеси (log-sum-exp по компонентам).
func (m *colorModel) logLikelihood(x [3]float64) float64 {
	best := math.Inf(-1)
	var terms [16]float64
	vals := terms[:0]
	for i := range m.comps {
		g := &m.comps[i]
		d0, d1, d2 := x[0]-g.mean[0], x[1]-g.mean[1], x[2]-g.mean[2]
		q := d0*(g.inv[0][0]*d0+g.inv[0][1]*d1+g.inv[0][2]*d2) +
			d1*(g.inv[1][0]*d0+g.inv[1][1]*d1+g.inv[1][2]*d2) +
			d2*(g.inv[2][0]*d0+g.inv[2][1]*d1+g.inv[2][2]*d2)
		v := g.logNorm - 0.5*q
		vals = append(vals, v)
		if v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return best
	}
	var s float64
	for _, v := range vals {
		s += math.Exp(v - best)
	}
	return best + math.Log(s)
}

func kmeansPlusPlus(samples [][3]float64, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	centers = append(centers, samples[rng.Intn(len(samples))])
	dist := make([]float64, len(samples))
	for len(centers) < k {
		var total float64
		for i, s := range samples {
			d := sqDist(s, centers[nearestCenter(centers, s)])
			dist[i] = d
			total += d
		}
		if total == 0 {
			// все точки совпадают с центрами, дублируем первый
			centers = append(centers, centers[0])
			continue
		}
		r := rng.Float64() * total
		idx := len(samples) - 1
		for i, d := range dist {
			r -= d
			if r <= 0 {
				idx = i
				break
			}
		}
		centers = append(centers, samples[idx])
	}
	return centers
}

func nearestCenter(centers [][3]float64, s [3]float64) int {
	best, bestD := 0, math.MaxFloat64
	for i, c := range centers {
		if d := sqDist(s, c); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

func thinSamples(samples [][3]float64, limit int) [][3]float64 {
	if len(samples) <= limit {
		return samples
	}
	step := (len(samples) + limit - 1) / limit
	out := make([][3]float64, 0, limit)
	for i := 0; i < len(samples); i += step {
		out = append(out, samples[i])
	}
	return out
}
