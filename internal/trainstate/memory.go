package trainstate

// Group is the in-memory ParamGroup implementation.
type Group struct {
	lr      float64
	wd      float64
	initial *float64
}

// NewGroup creates a parameter group with the given learning rate and weight
// decay, and no recorded initial learning rate.
func NewGroup(lr, wd float64) *Group {
	return &Group{lr: lr, wd: wd}
}

// WithInitialRate records an initial learning rate on the group and returns
// the group for chaining.
func (g *Group) WithInitialRate(lr float64) *Group {
	g.initial = &lr
	return g
}

func (g *Group) LearningRate() float64      { return g.lr }
func (g *Group) SetLearningRate(lr float64) { g.lr = lr }
func (g *Group) WeightDecay() float64       { return g.wd }
func (g *Group) SetWeightDecay(wd float64)  { g.wd = wd }

func (g *Group) InitialLearningRate() (float64, bool) {
	if g.initial == nil {
		return 0, false
	}
	return *g.initial, true
}

func (g *Group) SetInitialLearningRate(lr float64) {
	if g.initial == nil {
		return
	}
	g.initial = &lr
}

// SimpleOptimizer is the in-memory Optimizer implementation.
type SimpleOptimizer struct {
	groups []ParamGroup
}

// NewOptimizer creates an optimizer over the given parameter groups.
func NewOptimizer(groups ...*Group) *SimpleOptimizer {
	o := &SimpleOptimizer{groups: make([]ParamGroup, 0, len(groups))}
	for _, g := range groups {
		o.groups = append(o.groups, g)
	}
	return o
}

func (o *SimpleOptimizer) ParamGroups() []ParamGroup { return o.groups }

// SimpleScheduler is the in-memory Scheduler implementation.
type SimpleScheduler struct {
	base []float64
}

// NewScheduler creates a scheduler with the given ordered base rates.
func NewScheduler(base ...float64) *SimpleScheduler {
	return &SimpleScheduler{base: base}
}

func (s *SimpleScheduler) BaseRates() []float64 { return s.base }

func (s *SimpleScheduler) SetBaseRates(rates []float64) { s.base = rates }

// Param is the in-memory Parameter implementation.
type Param struct {
	trainable bool
}

// NewParam creates a parameter with the given trainable flag.
func NewParam(trainable bool) *Param {
	return &Param{trainable: trainable}
}

func (p *Param) Trainable() bool             { return p.trainable }
func (p *Param) SetTrainable(trainable bool) { p.trainable = trainable }

// SimpleModel is the in-memory Model implementation. Parameter order follows
// insertion order.
type SimpleModel struct {
	params []NamedParameter
}

// NewModel creates an empty model.
func NewModel() *SimpleModel {
	return &SimpleModel{}
}

// Add appends a named parameter to the model and returns the model for
// chaining. Names are not deduplicated; callers own uniqueness.
func (m *SimpleModel) Add(name string, p Parameter) *SimpleModel {
	m.params = append(m.params, NamedParameter{Name: name, Param: p})
	return m
}

func (m *SimpleModel) NamedParameters() []NamedParameter { return m.params }

// MemState is the in-memory State implementation.
type MemState struct {
	optimizers []Optimizer
	schedulers []Scheduler
	model      Model
}

// NewState creates a run state. A nil optimizers slice models a run whose
// optimizer collection is absent.
func NewState(optimizers []Optimizer, schedulers []Scheduler, model Model) *MemState {
	return &MemState{
		optimizers: optimizers,
		schedulers: schedulers,
		model:      model,
	}
}

func (s *MemState) Optimizers() []Optimizer { return s.optimizers }
func (s *MemState) Schedulers() []Scheduler { return s.schedulers }
func (s *MemState) Model() Model            { return s.model }
