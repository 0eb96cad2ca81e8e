package scheduler

// quantile estimates a single quantile of a stream, in constant space, using
// the P-square algorithm (Jain and Chlamtac, 1985). Five markers track the
// minimum, the p/2, p and (1+p)/2 quantiles, and the maximum.
type quantile struct {
	p       float64
	height  [5]float64
	pos     [5]float64
	want    [5]float64
	step    [5]float64
	samples int
}

func newQuantile(p float64) quantile {
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	return quantile{
		p:    p,
		want: [5]float64{0, 2 * p, 4 * p, 2 + 2*p, 4},
		step: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (x *quantile) add(v float64) {
	if x.samples < 5 {
		// insertion sort, markers start at the first five samples
		i := x.samples
		for ; i > 0 && x.height[i-1] > v; i-- {
			x.height[i] = x.height[i-1]
		}
		x.height[i] = v
		x.pos[x.samples] = float64(x.samples)
		x.samples++
		return
	}
	x.samples++

	var cell int
	switch {
	case v < x.height[0]:
		x.height[0] = v
	case v >= x.height[4]:
		x.height[4] = v
		cell = 3
	default:
		for cell < 3 && v >= x.height[cell+1] {
			cell++
		}
	}

	for i := cell + 1; i < 5; i++ {
		x.pos[i]++
	}
	for i := range x.want {
		x.want[i] += x.step[i]
	}

	for i := 1; i <= 3; i++ {
		d := x.want[i] - x.pos[i]
		if (d < 1 || x.pos[i+1]-x.pos[i] <= 1) && (d > -1 || x.pos[i-1]-x.pos[i] >= -1) {
			continue
		}
		s := 1.0
		if d < 0 {
			s = -1
		}
		h := x.parabolic(i, s)
		if h <= x.height[i-1] || h >= x.height[i+1] {
			j := i + int(s)
			h = x.height[i] + s*(x.height[j]-x.height[i])/(x.pos[j]-x.pos[i])
		}
		x.height[i] = h
		x.pos[i] += s
	}
}

func (x *quantile) parabolic(i int, s float64) float64 {
	lo, mid, hi := x.pos[i-1], x.pos[i], x.pos[i+1]
	return x.height[i] + s/(hi-lo)*
		((mid-lo+s)*(x.height[i+1]-x.height[i])/(hi-mid)+
			(hi-mid-s)*(x.height[i]-x.height[i-1])/(mid-lo))
}

// value returns the current estimate, or 0 if there are no samples.
func (x *quantile) value() float64 {
	switch n := x.samples; {
	case n == 0:
		return 0
	case n < 5:
		// the first samples are held sorted
		return x.height[int(float64(n-1)*x.p)]
	default:
		return x.height[2]
	}
}
