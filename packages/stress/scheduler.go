package stress

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler picks actions by weight and paces them
type Scheduler struct {
	config  *Config
	limiter *rate.Limiter
	sem     chan struct{} // bounds concurrently running sessions

	mu          sync.Mutex
	actions     []string
	weights     []int
	totalWeight int
}

// NewScheduler creates a new scheduler with the given config
func NewScheduler(config *Config) *Scheduler {
	s := &Scheduler{config: config}

	if config.Mode == RateMode && config.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}

	maxVUs := config.MaxVUs
	if maxVUs < 1 {
		maxVUs = 100
	}
	s.sem = make(chan struct{}, maxVUs)

	return s
}

// AddAction registers an action. A weight of zero or less leaves the action
// out of the mix.
func (s *Scheduler) AddAction(name string, weight int) {
	if weight <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.actions {
		if existing == name {
			s.totalWeight += weight - s.weights[i]
			s.weights[i] = weight
			return
		}
	}
	s.actions = append(s.actions, name)
	s.weights = append(s.weights, weight)
	s.totalWeight += weight
}

// SelectAction picks an action with probability proportional to its weight
func (s *Scheduler) SelectAction() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch len(s.actions) {
	case 0:
		return "", false
	case 1:
		return s.actions[0], true
	}

	r := rand.Intn(s.totalWeight)
	cumulative := 0
	for i, w := range s.weights {
		cumulative += w
		if r < cumulative {
			return s.actions[i], true
		}
	}
	return s.actions[len(s.actions)-1], true
}

// Wait waits for rate limiter (rate mode) or returns immediately (VU mode)
func (s *Scheduler) Wait(ctx context.Context) error {
	if s.limiter != nil {
		return s.limiter.Wait(ctx)
	}
	return nil
}

// Acquire acquires a slot from the concurrency semaphore
func (s *Scheduler) Acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a slot back to the semaphore
func (s *Scheduler) Release() {
	<-s.sem
}

// CurrentRate returns the target rate after elapsed, ramping up linearly
func (s *Scheduler) CurrentRate(elapsed time.Duration) float64 {
	if s.config.RampUp <= 0 || elapsed >= s.config.RampUp {
		return s.config.Rate
	}
	return s.config.Rate * float64(elapsed) / float64(s.config.RampUp)
}

// CurrentVUs returns the target VU count after elapsed, ramping up linearly
func (s *Scheduler) CurrentVUs(elapsed time.Duration) int {
	if s.config.RampUp <= 0 || elapsed >= s.config.RampUp {
		return s.config.VUs
	}
	return int(float64(s.config.VUs) * float64(elapsed) / float64(s.config.RampUp))
}

// UpdateRate updates the rate limiter's rate
func (s *Scheduler) UpdateRate(newRate float64) {
	if s.limiter != nil && newRate > 0 {
		s.limiter.SetLimit(rate.Limit(newRate))
	}
}

// ActionCount returns the number of actions in the mix
func (s *Scheduler) ActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// Weights returns a copy of the action mix
func (s *Scheduler) Weights() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]int, len(s.actions))
	for i, name := range s.actions {
		result[name] = s.weights[i]
	}
	return result
}

// executor runs fn as the named action and records its outcome
type executor func(ctx context.Context, name string, fn func(context.Context) error) error

// VURunner is one virtual user: a session that logs in once and then runs
// actions back to back with think time in between
type VURunner struct {
	id        int
	scheduler *Scheduler
	config    *Config
	metrics   *Metrics
	workload  Workload
	execute   executor
	cancel    context.CancelFunc
}

// NewVURunner creates a new VU runner
func NewVURunner(id int, scheduler *Scheduler, config *Config, metrics *Metrics, workload Workload, execute executor) *VURunner {
	return &VURunner{
		id:        id,
		scheduler: scheduler,
		config:    config,
		metrics:   metrics,
		workload:  workload,
		execute:   execute,
	}
}

// Start starts the VU runner
func (v *VURunner) Start(ctx context.Context, wg *sync.WaitGroup) {
	ctx, v.cancel = context.WithCancel(ctx)

	wg.Add(1)
	go func() {
		defer wg.Done()
		v.run(ctx)
	}()
}

// Stop stops the VU runner
func (v *VURunner) Stop() {
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *VURunner) run(ctx context.Context) {
	v.metrics.IncrementActiveVUs()
	defer v.metrics.DecrementActiveVUs()

	sess, ok := v.login(ctx)
	if !ok {
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		action, ok := v.scheduler.SelectAction()
		if !ok {
			return
		}

		if err := v.scheduler.Acquire(ctx); err != nil {
			return
		}
		_ = v.execute(ctx, action, func(ctx context.Context) error {
			return sess.Run(ctx, action)
		})
		v.scheduler.Release()

		if !v.think(ctx) {
			return
		}
	}
}

// login opens a session and retries the setup action until it succeeds or
// the run ends. A user that cannot log in has nothing else to do.
func (v *VURunner) login(ctx context.Context) (Session, bool) {
	for {
		sess, err := v.workload.NewSession(ctx)
		if err == nil {
			err = v.execute(ctx, v.workload.SetupAction(), sess.Setup)
			if err == nil {
				return sess, true
			}
		}
		if ctx.Err() != nil {
			return nil, false
		}
		if !v.backoff(ctx) {
			return nil, false
		}
	}
}

func (v *VURunner) think(ctx context.Context) bool {
	if v.config.ThinkTime <= 0 {
		return ctx.Err() == nil
	}
	return sleep(ctx, v.config.ThinkTime)
}

func (v *VURunner) backoff(ctx context.Context) bool {
	d := v.config.ThinkTime
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// VUPool manages a pool of virtual users
type VUPool struct {
	scheduler *Scheduler
	config    *Config
	metrics   *Metrics
	workload  Workload
	execute   executor
	runners   []*VURunner
	nextID    int
	mu        sync.Mutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewVUPool creates a new VU pool
func NewVUPool(scheduler *Scheduler, config *Config, metrics *Metrics, workload Workload, execute executor) *VUPool {
	return &VUPool{
		scheduler: scheduler,
		config:    config,
		metrics:   metrics,
		workload:  workload,
		execute:   execute,
	}
}

// Start starts the VU pool with the initial number of VUs
func (p *VUPool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	initialVUs := p.scheduler.CurrentVUs(0)
	if initialVUs < 1 {
		initialVUs = 1
	}
	p.Scale(initialVUs)
}

// Scale adjusts the number of running VUs
func (p *VUPool) Scale(targetVUs int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.runners) < targetVUs {
		runner := NewVURunner(p.nextID, p.scheduler, p.config, p.metrics, p.workload, p.execute)
		p.nextID++
		runner.Start(p.ctx, &p.wg)
		p.runners = append(p.runners, runner)
	}
	for len(p.runners) > targetVUs && len(p.runners) > 0 {
		last := len(p.runners) - 1
		p.runners[last].Stop()
		p.runners = p.runners[:last]
	}
}

// Stop stops all VUs
func (p *VUPool) Stop() {
	p.mu.Lock()
	for _, r := range p.runners {
		r.Stop()
	}
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
}

// Wait waits for all VUs to finish
func (p *VUPool) Wait() {
	p.wg.Wait()
}

// Count returns the current number of running VUs
func (p *VUPool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.runners)
}

// SessionPool hands out logged-in sessions in rate mode. A session is used
// by one action at a time; new sessions are opened only when every existing
// one is busy.
type SessionPool struct {
	workload Workload
	execute  executor
	idle     chan Session
}

// NewSessionPool creates a pool holding at most size idle sessions
func NewSessionPool(workload Workload, execute executor, size int) *SessionPool {
	if size < 1 {
		size = 1
	}
	return &SessionPool{
		workload: workload,
		execute:  execute,
		idle:     make(chan Session, size),
	}
}

// Get returns an idle session or logs in a new one
func (p *SessionPool) Get(ctx context.Context) (Session, error) {
	select {
	case sess := <-p.idle:
		return sess, nil
	default:
	}

	sess, err := p.workload.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.execute(ctx, p.workload.SetupAction(), sess.Setup); err != nil {
		return nil, err
	}
	return sess, nil
}

// Put returns a session to the pool; it is dropped when the pool is full
func (p *SessionPool) Put(sess Session) {
	select {
	case p.idle <- sess:
	default:
	}
}

// Idle returns the number of sessions waiting for work
func (p *SessionPool) Idle() int {
	return len(p.idle)
}
