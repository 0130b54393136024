package indicators

// Crossover detects the bar on which a fast line crosses a slow line.
//
// It compares the previous-bar and current-bar ordering of the two
// inputs: +1 when fast moves from at-or-below to above slow, -1 on the
// reverse transition, 0 otherwise. Callers must only feed values from
// indicators that are already warmed up.
type Crossover struct {
	lastDiff float64
	updates  int
	signal   int
}

func NewCrossover() *Crossover {
	return &Crossover{}
}

func (x *Crossover) Name() string {
	return "Crossover"
}

// Warmup is 2: a cross needs a previous comparison.
func (x *Crossover) Warmup() int {
	return 2
}

func (x *Crossover) Reset() {
	x.lastDiff = 0
	x.updates = 0
	x.signal = 0
}

// Update consumes the current fast and slow values and recomputes the
// cross signal for this bar.
func (x *Crossover) Update(fast, slow float64) {
	diff := fast - slow

	x.updates++
	if x.updates == 1 {
		x.lastDiff = diff
		x.signal = 0
		return
	}

	switch {
	case diff > 0 && x.lastDiff <= 0:
		x.signal = +1
	case diff < 0 && x.lastDiff >= 0:
		x.signal = -1
	default:
		x.signal = 0
	}
	x.lastDiff = diff
}

func (x *Crossover) Ready() bool {
	return x.updates >= 2
}

// Value returns +1 on a bull cross, -1 on a bear cross, 0 otherwise,
// for the most recent Update.
func (x *Crossover) Value() int {
	if !x.Ready() {
		return 0
	}
	return x.signal
}
