package optimizer

import (
	"context"
	"math"
	"sort"
)

type individual struct {
	numContainers int
	heights       []float64
	order         []int

	fitness     float64
	containers  []Container
	placed      int
	totalHeight float64
}

func (ind *individual) clone() *individual {
	c := &individual{
		numContainers: ind.numContainers,
		heights:       append([]float64(nil), ind.heights...),
		order:         append([]int(nil), ind.order...),
		fitness:       ind.fitness,
		placed:        ind.placed,
		totalHeight:   ind.totalHeight,
	}
	c.containers = make([]Container, len(ind.containers))
	for i, ct := range ind.containers {
		ct.Bottom = append([]Placement(nil), ct.Bottom...)
		ct.Top = append([]Placement(nil), ct.Top...)
		c.containers[i] = ct
	}
	return c
}

func (o *Optimizer) randomIndividual() *individual {
	n := 1 + o.rng.Intn(o.cfg.MaxContainers)
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = o.cfg.MaxTotalHeight / float64(n)
	}
	order := o.rng.Perm(len(o.rects))
	return &individual{numContainers: n, heights: heights, order: order}
}

// Run evolves the population and returns the best packing found. The search
// checks ctx once per generation, so cancellation returns the best solution
// so far with the context error.
func (o *Optimizer) Run(ctx context.Context) (Solution, error) {
	population := make([]*individual, o.cfg.PopulationSize)
	for i := range population {
		population[i] = o.randomIndividual()
		o.evaluate(population[i])
	}

	var best *individual
	stagnation := 0

	for gen := 0; gen < o.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return o.solution(best), err
		}

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		if best == nil || population[0].fitness > best.fitness {
			best = population[0].clone()
			stagnation = 0
		} else {
			stagnation++
		}

		mutationRate := o.cfg.MutationRate
		if stagnation > 15 {
			mutationRate = math.Min(0.8, mutationRate*(1+float64(stagnation)/20))
		}

		elite := int(float64(o.cfg.PopulationSize) * o.cfg.ElitismRate)
		if elite < 1 {
			elite = 1
		}
		next := make([]*individual, 0, o.cfg.PopulationSize)
		for i := 0; i < elite && i < len(population); i++ {
			next = append(next, population[i].clone())
		}

		immigrants := o.cfg.PopulationSize / 10
		if immigrants < 1 {
			immigrants = 1
		}
		for i := 0; i < immigrants && len(next) < o.cfg.PopulationSize; i++ {
			im := o.randomIndividual()
			o.evaluate(im)
			next = append(next, im)
		}

		for len(next) < o.cfg.PopulationSize {
			p1 := o.selectParent(population)
			p2 := o.selectParent(population)

			c1, c2 := p1.clone(), p2.clone()
			if o.rng.Float64() < o.cfg.CrossoverRate {
				c1, c2 = o.crossover(p1, p2)
			}
			if o.rng.Float64() < mutationRate {
				o.mutate(c1)
			}
			if o.rng.Float64() < mutationRate {
				o.mutate(c2)
			}
			if stagnation > 25 && o.rng.Float64() < 0.3 {
				extra := 1 + o.rng.Intn(2)
				for i := 0; i < extra; i++ {
					o.mutate(c1)
					o.mutate(c2)
				}
			}

			o.evaluate(c1)
			next = append(next, c1)
			if len(next) < o.cfg.PopulationSize {
				o.evaluate(c2)
				next = append(next, c2)
			}
		}
		population = next
	}

	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
	if best == nil || population[0].fitness > best.fitness {
		best = population[0].clone()
	}
	return o.solution(best), nil
}

// selectParent is tournament selection with an occasional uniform pick to
// preserve diversity.
func (o *Optimizer) selectParent(population []*individual) *individual {
	if o.rng.Float64() < 0.25 {
		return population[o.rng.Intn(len(population))]
	}
	size := 2 + o.rng.Intn(4)
	best := population[o.rng.Intn(len(population))]
	for i := 1; i < size; i++ {
		cand := population[o.rng.Intn(len(population))]
		if cand.fitness > best.fitness {
			best = cand
		}
	}
	return best
}

// crossover mixes container counts and heights uniformly and recombines the
// placement orders with order crossover.
func (o *Optimizer) crossover(p1, p2 *individual) (*individual, *individual) {
	c1, c2 := p1.clone(), p2.clone()

	if o.rng.Float64() < 0.5 {
		c1.numContainers, c2.numContainers = p2.numContainers, p1.numContainers
	}

	mixed1 := mixHeights(o, p1.heights, p2.heights, c1.numContainers)
	mixed2 := mixHeights(o, p2.heights, p1.heights, c2.numContainers)
	c1.heights, c2.heights = mixed1, mixed2

	c1.order = o.orderCrossover(p1.order, p2.order)
	c2.order = o.orderCrossover(p2.order, p1.order)
	return c1, c2
}

func mixHeights(o *Optimizer, a, b []float64, n int) []float64 {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	out := make([]float64, 0, n)
	for i := 0; i < limit && len(out) < n; i++ {
		if o.rng.Float64() < 0.5 {
			out = append(out, a[i])
		} else {
			out = append(out, b[i])
		}
	}
	for len(out) < n {
		out = append(out, o.cfg.MaxTotalHeight/float64(n))
	}
	return out
}

// orderCrossover keeps a random slice of the first parent and fills the
// rest in the second parent's order.
func (o *Optimizer) orderCrossover(a, b []int) []int {
	n := len(a)
	if n < 2 {
		return append([]int(nil), a...)
	}
	start := o.rng.Intn(n)
	end := start + o.rng.Intn(n-start)

	child := make([]int, n)
	taken := make(map[int]bool, n)
	for i := start; i <= end; i++ {
		child[i] = a[i]
		taken[a[i]] = true
	}
	idx := 0
	for _, v := range b {
		if taken[v] {
			continue
		}
		for idx >= start && idx <= end {
			idx++
		}
		if idx >= n {
			break
		}
		child[idx] = v
		idx++
	}
	return child
}

// mutate applies one of six operators: container count, single height,
// order swap, even redistribution, window shuffle, or full height reroll.
func (o *Optimizer) mutate(ind *individual) {
	switch o.rng.Intn(6) {
	case 0:
		ind.numContainers = 1 + o.rng.Intn(o.cfg.MaxContainers)
		o.resizeHeights(ind)
	case 1:
		if len(ind.heights) > 0 {
			i := o.rng.Intn(len(ind.heights))
			ind.heights[i] *= 0.7 + o.rng.Float64()*0.6
			if ind.heights[i] < 1 {
				ind.heights[i] = 1
			}
			o.normalizeHeights(ind.heights)
		}
	case 2:
		if len(ind.order) >= 2 {
			i, j := o.rng.Intn(len(ind.order)), o.rng.Intn(len(ind.order))
			ind.order[i], ind.order[j] = ind.order[j], ind.order[i]
		}
	case 3:
		n := ind.numContainers
		ind.heights = make([]float64, n)
		remaining := o.cfg.MaxTotalHeight
		for i := 0; i < n-1; i++ {
			h := o.cfg.MaxTotalHeight / float64(n) * (0.8 + o.rng.Float64()*0.4)
			if h > remaining {
				h = remaining
			}
			ind.heights[i] = h
			remaining -= h
		}
		ind.heights[n-1] = remaining
	case 4:
		n := len(ind.order)
		if n >= 3 {
			size := n/3 + o.rng.Intn(n/3+1)
			if size > n {
				size = n
			}
			start := o.rng.Intn(n - size + 1)
			window := ind.order[start : start+size]
			o.rng.Shuffle(len(window), func(i, j int) {
				window[i], window[j] = window[j], window[i]
			})
		}
	case 5:
		n := ind.numContainers
		ind.heights = make([]float64, n)
		remaining := o.cfg.MaxTotalHeight
		for i := 0; i < n-1; i++ {
			h := 0.5 + o.rng.Float64()*(remaining*0.8-0.5)
			if h < 0.5 {
				h = 0.5
			}
			ind.heights[i] = h
			remaining -= h
			if remaining < 0 {
				remaining = 0
			}
		}
		ind.heights[n-1] = remaining
	}
}

func (o *Optimizer) resizeHeights(ind *individual) {
	n := ind.numContainers
	if len(ind.heights) > n {
		ind.heights = ind.heights[:n]
		return
	}
	for len(ind.heights) < n {
		ind.heights = append(ind.heights, o.cfg.MaxTotalHeight/float64(n))
	}
}

func (o *Optimizer) normalizeHeights(heights []float64) {
	sum := 0.0
	for _, h := range heights {
		sum += h
	}
	if sum <= o.cfg.MaxTotalHeight || sum == 0 {
		return
	}
	scale := o.cfg.MaxTotalHeight / sum
	for i := range heights {
		heights[i] *= scale
	}
}

// solution strips empty containers and reports which rectangles did not fit.
func (o *Optimizer) solution(best *individual) Solution {
	if best == nil {
		return Solution{}
	}
	placed := make(map[int]bool, best.placed)
	containers := make([]Container, 0, len(best.containers))
	total := 0.0
	for _, c := range best.containers {
		if len(c.Bottom) == 0 && len(c.Top) == 0 {
			continue
		}
		for _, p := range c.Bottom {
			placed[p.RectID] = true
		}
		for _, p := range c.Top {
			placed[p.RectID] = true
		}
		containers = append(containers, c)
		total += c.Height
	}
	var unplaced []int
	for _, r := range o.rects {
		if !placed[r.ID] {
			unplaced = append(unplaced, r.ID)
		}
	}
	return Solution{
		Containers:  containers,
		TotalHeight: total,
		Placed:      len(placed),
		Unplaced:    unplaced,
		Fitness:     best.fitness,
	}
}
