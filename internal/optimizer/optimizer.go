// Package optimizer packs MEP cross-sections into stacked tier containers
// with a genetic algorithm. Rectangles attach to the top or bottom edge of
// a container only, never rotated; X-axis overlap between opposite edges is
// allowed and container heights compress down to the clash-free minimum.
package optimizer

import (
	"errors"
	"math/rand"
	"sort"
)

// Rect is one cross-section to pack. Units are inches, matching MEP specs.
type Rect struct {
	ID     int     `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the rectangle area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Placement is one packed rectangle: which rect, and its X offset from the
// container's left edge.
type Placement struct {
	RectID int     `json:"rectId"`
	X      float64 `json:"x"`
}

// Container is one tier: fixed width, optimized height, rectangles on the
// bottom and top edges.
type Container struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Bottom []Placement `json:"bottom"`
	Top    []Placement `json:"top"`
}

func (c *Container) usedArea(rects []Rect) float64 {
	total := 0.0
	for _, p := range c.Bottom {
		total += rects[p.RectID].Area()
	}
	for _, p := range c.Top {
		total += rects[p.RectID].Area()
	}
	return total
}

// Utilization is the packed-area fraction of the container.
func (c *Container) Utilization(rects []Rect) float64 {
	area := c.Width * c.Height
	if area == 0 {
		return 0
	}
	return c.usedArea(rects) / area
}

func (c *Container) bottomHeight(rects []Rect) float64 {
	h := 0.0
	for _, p := range c.Bottom {
		if rh := rects[p.RectID].Height; rh > h {
			h = rh
		}
	}
	return h
}

func (c *Container) topHeight(rects []Rect) float64 {
	h := 0.0
	for _, p := range c.Top {
		if rh := rects[p.RectID].Height; rh > h {
			h = rh
		}
	}
	return h
}

// MinimumHeight is the shortest clash-free container height: the height sum
// for any X-overlapping bottom/top pair, the max of the two side heights
// when nothing overlaps, and never less than the tallest rectangle.
func (c *Container) MinimumHeight(rects []Rect) float64 {
	if len(c.Bottom) == 0 || len(c.Top) == 0 {
		return c.bottomHeight(rects) + c.topHeight(rects)
	}

	need := 0.0
	for _, bp := range c.Bottom {
		br := rects[bp.RectID]
		for _, tp := range c.Top {
			tr := rects[tp.RectID]
			overlaps := !(bp.X+br.Width <= tp.X || bp.X >= tp.X+tr.Width)
			if overlaps {
				if h := br.Height + tr.Height; h > need {
					need = h
				}
			}
		}
	}
	if need == 0 {
		need = c.bottomHeight(rects)
		if th := c.topHeight(rects); th > need {
			need = th
		}
	}

	tallest := 0.0
	for _, p := range append(append([]Placement(nil), c.Bottom...), c.Top...) {
		if h := rects[p.RectID].Height; h > tallest {
			tallest = h
		}
	}
	if tallest > need {
		return tallest
	}
	return need
}

// hasClashes reports whether any bottom/top pair physically overlaps at the
// container's current height.
func (c *Container) hasClashes(rects []Rect) bool {
	if len(c.Bottom) == 0 || len(c.Top) == 0 {
		return false
	}
	for _, bp := range c.Bottom {
		br := rects[bp.RectID]
		for _, tp := range c.Top {
			tr := rects[tp.RectID]
			xOverlap := !(bp.X+br.Width <= tp.X || bp.X >= tp.X+tr.Width)
			yOverlap := !(br.Height <= c.Height-tr.Height)
			if xOverlap && yOverlap {
				return true
			}
		}
	}
	return false
}

// Solution is the best packing found.
type Solution struct {
	Containers  []Container `json:"containers"`
	TotalHeight float64     `json:"totalHeight"`
	Placed      int         `json:"placed"`
	Unplaced    []int       `json:"unplaced,omitempty"`
	Fitness     float64     `json:"fitness"`
}

// Config holds the problem constraints and GA settings.
type Config struct {
	ContainerWidth float64
	MaxTotalHeight float64
	MaxContainers  int
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	ElitismRate    float64
}

// DefaultConfig returns the stock GA settings.
func DefaultConfig() Config {
	return Config{
		MaxContainers:  5,
		PopulationSize: 100,
		Generations:    200,
		MutationRate:   0.2,
		CrossoverRate:  0.8,
		ElitismRate:    0.1,
	}
}

var (
	// ErrNoRectangles indicates an empty packing problem.
	ErrNoRectangles = errors.New("no rectangles to pack")
	// ErrInvalidConstraints indicates a non-positive width or height bound.
	ErrInvalidConstraints = errors.New("container width and max height must be positive")
)

// Optimizer runs the genetic search. All randomness flows through the
// injected source, so runs are reproducible under a seeded rand.
type Optimizer struct {
	rects []Rect
	cfg   Config
	rng   *rand.Rand
}

// New validates the problem and builds an optimizer.
func New(rects []Rect, cfg Config, rng *rand.Rand) (*Optimizer, error) {
	if len(rects) == 0 {
		return nil, ErrNoRectangles
	}
	if cfg.ContainerWidth <= 0 || cfg.MaxTotalHeight <= 0 {
		return nil, ErrInvalidConstraints
	}
	if cfg.MaxContainers <= 0 {
		cfg.MaxContainers = DefaultConfig().MaxContainers
	}
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = DefaultConfig().PopulationSize
	}
	if cfg.Generations <= 0 {
		cfg.Generations = DefaultConfig().Generations
	}
	if cfg.MutationRate <= 0 {
		cfg.MutationRate = DefaultConfig().MutationRate
	}
	if cfg.CrossoverRate <= 0 {
		cfg.CrossoverRate = DefaultConfig().CrossoverRate
	}
	if cfg.ElitismRate <= 0 {
		cfg.ElitismRate = DefaultConfig().ElitismRate
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	normalized := make([]Rect, len(rects))
	for i, r := range rects {
		r.ID = i
		normalized[i] = r
	}
	return &Optimizer{rects: normalized, cfg: cfg, rng: rng}, nil
}

// pack places rectangles in the individual's order into its containers,
// bottom edge first, preferring X-alignment with the opposite edge. After
// placement every occupied container compresses to its minimum height plus
// a tiny exploration jitter.
func (o *Optimizer) pack(ind *individual) ([]Container, int) {
	containers := make([]Container, ind.numContainers)
	for i := range containers {
		h := o.cfg.MaxTotalHeight / float64(ind.numContainers)
		if i < len(ind.heights) {
			h = ind.heights[i]
		}
		containers[i] = Container{Width: o.cfg.ContainerWidth, Height: h}
	}

	placed := 0
	for _, rectIdx := range ind.order {
		rect := o.rects[rectIdx]
		done := false
		for ci := range containers {
			c := &containers[ci]
			if rect.Width > c.Width {
				continue
			}
			if x, ok := o.findBottomPosition(c, rect); ok {
				c.Bottom = append(c.Bottom, Placement{RectID: rectIdx, X: x})
				placed++
				done = true
				break
			}
			if x, ok := o.findTopPosition(c, rect); ok {
				c.Top = append(c.Top, Placement{RectID: rectIdx, X: x})
				placed++
				done = true
				break
			}
		}
		_ = done
	}

	for i := range containers {
		c := &containers[i]
		if len(c.Bottom) == 0 && len(c.Top) == 0 {
			continue
		}
		min := c.MinimumHeight(o.rects)
		c.Height = min + o.rng.Float64()*0.02*min
	}
	return containers, placed
}

func (o *Optimizer) canPlaceBottom(c *Container, rect Rect) bool {
	if rect.Height > c.Height {
		return false
	}
	newBottom := c.bottomHeight(o.rects)
	if rect.Height > newBottom {
		newBottom = rect.Height
	}
	return newBottom <= c.Height-c.topHeight(o.rects)
}

func (o *Optimizer) canPlaceTop(c *Container, rect Rect) bool {
	if rect.Height > c.Height {
		return false
	}
	newTop := c.topHeight(o.rects)
	if rect.Height > newTop {
		newTop = rect.Height
	}
	return newTop <= c.Height-c.bottomHeight(o.rects)
}

// findBottomPosition returns an X for the rect on the bottom edge: aligned
// with a top rectangle when possible, otherwise the leftmost gap.
func (o *Optimizer) findBottomPosition(c *Container, rect Rect) (float64, bool) {
	if !o.canPlaceBottom(c, rect) {
		return 0, false
	}
	for _, tp := range c.Top {
		tr := o.rects[tp.RectID]
		if tp.X+rect.Width <= c.Width && !overlapsEdge(o.rects, c.Bottom, rect, tp.X) {
			return tp.X, true
		}
		aligned := tp.X + tr.Width - rect.Width
		if aligned >= 0 && aligned+rect.Width <= c.Width && !overlapsEdge(o.rects, c.Bottom, rect, aligned) {
			return aligned, true
		}
	}
	return leftmostGap(o.rects, c.Bottom, rect, c.Width)
}

// findTopPosition mirrors findBottomPosition for the top edge.
func (o *Optimizer) findTopPosition(c *Container, rect Rect) (float64, bool) {
	if !o.canPlaceTop(c, rect) {
		return 0, false
	}
	for _, bp := range c.Bottom {
		br := o.rects[bp.RectID]
		if bp.X+rect.Width <= c.Width && !overlapsEdge(o.rects, c.Top, rect, bp.X) {
			return bp.X, true
		}
		aligned := bp.X + br.Width - rect.Width
		if aligned >= 0 && aligned+rect.Width <= c.Width && !overlapsEdge(o.rects, c.Top, rect, aligned) {
			return aligned, true
		}
	}
	return leftmostGap(o.rects, c.Top, rect, c.Width)
}

// overlapsEdge reports X overlap with rectangles already on the same edge.
func overlapsEdge(rects []Rect, edge []Placement, rect Rect, x float64) bool {
	for _, p := range edge {
		er := rects[p.RectID]
		if !(x+rect.Width <= p.X || x >= p.X+er.Width) {
			return true
		}
	}
	return false
}

// leftmostGap scans the occupied ranges on one edge for the first gap wide
// enough for the rect.
func leftmostGap(rects []Rect, edge []Placement, rect Rect, width float64) (float64, bool) {
	type span struct{ start, end float64 }
	occupied := make([]span, 0, len(edge))
	for _, p := range edge {
		occupied = append(occupied, span{p.X, p.X + rects[p.RectID].Width})
	}
	sort.Slice(occupied, func(i, j int) bool { return occupied[i].start < occupied[j].start })

	x := 0.0
	for _, s := range occupied {
		if x+rect.Width <= s.start {
			return x, true
		}
		if s.end > x {
			x = s.end
		}
	}
	if x+rect.Width <= width {
		return x, true
	}
	return 0, false
}

// evaluate scores an individual: placement rate dominates, with bonuses for
// full placement, utilization and compactness, and penalties for container
// count, total height, and any physical clash.
func (o *Optimizer) evaluate(ind *individual) {
	containers, placed := o.pack(ind)
	ind.containers = containers
	ind.placed = placed

	total := 0.0
	for _, c := range containers {
		total += c.Height
	}
	ind.totalHeight = total

	if placed == 0 {
		ind.fitness = -1000
		return
	}

	utilization := 0.0
	occupied := 0
	for i := range containers {
		c := &containers[i]
		if len(c.Bottom) == 0 && len(c.Top) == 0 {
			continue
		}
		occupied++
		utilization += c.Utilization(o.rects)
	}
	if occupied > 0 {
		utilization /= float64(occupied)
	}

	placementRate := float64(placed) / float64(len(o.rects))
	containerPenalty := float64(ind.numContainers) / float64(o.cfg.MaxContainers)
	heightPenalty := total / o.cfg.MaxTotalHeight

	bonus := 0.0
	if placed == len(o.rects) {
		bonus = 500
	}

	clashPenalty := 0.0
	compactness := 0.0
	for i := range containers {
		c := &containers[i]
		if c.hasClashes(o.rects) {
			clashPenalty += 10000
		}
		if len(c.Bottom) > 0 && len(c.Top) > 0 && c.Height > 0 {
			compactness += c.MinimumHeight(o.rects) / c.Height * 200
		}
	}

	ind.fitness = placementRate*1000 +
		bonus +
		utilization*300 +
		compactness -
		containerPenalty*50 -
		heightPenalty*30 -
		clashPenalty
}
