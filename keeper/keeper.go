// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/log"
	"github.com/shmonad/shmon/shmon"
)

var logger = log.WithContext("pkg", "keeper")

// Chain is the simulated chain advanced by the keeper in solo mode.
type Chain interface {
	NextEpoch()
	Accrue(rate uint256.Int)
}

// Status is the keeper health as seen by the admin API.
type Status struct {
	Healthy       bool       `json:"healthy"`
	Frozen        bool       `json:"frozen"`
	InternalEpoch uint64     `json:"internalEpoch"`
	LastCrank     *time.Time `json:"lastCrank"`
	LastError     string     `json:"lastError,omitempty"`
}

// Service owns the ledger. Every access goes through its lock, and every
// state change is saved to the store before the lock is released.
type Service struct {
	lock   sync.Mutex
	ledger *ledger.Ledger
	store  kv.Putter
	opts   Options
	chain  Chain
	tips   map[shmon.ValidatorID]*TipJar
	now    func() time.Time

	lastCrank time.Time
	lastErr   error
}

// New creates a keeper for l. A nil store disables persistence.
func New(l *ledger.Ledger, store kv.Putter, opts Options) *Service {
	return &Service{
		ledger: l,
		store:  store,
		opts:   opts,
		tips:   make(map[shmon.ValidatorID]*TipJar),
		now:    time.Now,
	}
}

// SetChain enables epoch ticking of a simulated chain.
func (s *Service) SetChain(c Chain) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.chain = c
}

// AddTipJar installs a payout processor on id that forwards tip per crank.
func (s *Service) AddTipJar(id shmon.ValidatorID, tip uint256.Int) error {
	return s.Update(func(l *ledger.Ledger) error {
		jar := &TipJar{ID: id, Tip: tip}
		if err := l.SetPayoutProcessor(id, jar); err != nil {
			return err
		}
		s.tips[id] = jar
		return nil
	})
}

// View runs fn with the ledger locked. fn must not change it.
func (s *Service) View(fn func(l *ledger.Ledger) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return fn(s.ledger)
}

// Update runs fn with the ledger locked and saves the result.
func (s *Service) Update(fn func(l *ledger.Ledger) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := fn(s.ledger); err != nil {
		return err
	}
	return s.save()
}

// Crank runs one crank call with limit (zero uses the configured limit).
func (s *Service) Crank(limit uint64) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.crank(limit)
}

// CrankAll cranks until the ledger reports nothing to do, at most MaxCranks times.
func (s *Service) CrankAll() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for n := 0; n < s.opts.MaxCranks; n++ {
		complete, err := s.crank(0)
		if err != nil {
			return n, err
		}
		if complete {
			return n, nil
		}
	}
	return s.opts.MaxCranks, nil
}

func (s *Service) crank(limit uint64) (bool, error) {
	if limit == 0 {
		limit = s.opts.CrankLimit
	}
	complete, err := s.ledger.Crank(limit)
	if err != nil {
		s.lastErr = err
		return false, err
	}
	s.flushTips()
	s.lastCrank = s.now()
	s.lastErr = nil
	s.updateGauges()
	return complete, s.save()
}

// flushTips forwards what the payout processors collected during the crank.
func (s *Service) flushTips() {
	for id, jar := range s.tips {
		amount := jar.take()
		if amount.IsZero() {
			continue
		}
		if err := s.ledger.BoostYield(id, amount); err != nil {
			// the validator was removed after its cooldown
			logger.Debug("tip dropped", "validator", id, "amount", shmon.Format(amount), "err", err)
			delete(s.tips, id)
		}
	}
}

// AdvanceEpoch accrues rewards and moves the simulated chain to the next epoch.
func (s *Service) AdvanceEpoch() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.chain == nil {
		return errors.New("no simulated chain")
	}
	if !s.opts.RewardRate.IsZero() {
		s.chain.Accrue(s.opts.RewardRate)
	}
	s.chain.NextEpoch()
	return nil
}

// Status reports the keeper unhealthy when the ledger is frozen, the last
// crank failed or no crank succeeded within maxAge.
func (s *Service) Status(maxAge time.Duration) Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := Status{
		Frozen:        s.ledger.Frozen(),
		InternalEpoch: s.ledger.InternalEpoch(),
	}
	if !s.lastCrank.IsZero() {
		last := s.lastCrank
		st.LastCrank = &last
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	st.Healthy = !st.Frozen && s.lastErr == nil &&
		st.LastCrank != nil && s.now().Sub(s.lastCrank) <= maxAge
	return st
}

// Run schedules the keeper jobs and blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.opts.CrankSchedule, s.crankJob); err != nil {
		return errors.Wrap(err, "schedule crank")
	}
	s.lock.Lock()
	ticking := s.chain != nil && s.opts.EpochSchedule != ""
	s.lock.Unlock()
	if ticking {
		if _, err := c.AddFunc(s.opts.EpochSchedule, s.epochJob); err != nil {
			return errors.Wrap(err, "schedule epoch")
		}
	}

	c.Start()
	logger.Info("keeper started", "crank", s.opts.CrankSchedule, "epoch", s.opts.EpochSchedule, "ticking", ticking)
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("keeper stopped")
	return nil
}

func (s *Service) crankJob() {
	n, err := s.CrankAll()
	metricKeeperCranks().Observe(int64(n))
	if err != nil {
		metricKeeperRuns().AddWithLabel(1, map[string]string{"job": "crank", "result": "error"})
		logger.Warn("crank failed", "cranks", n, "err", err)
		return
	}
	metricKeeperRuns().AddWithLabel(1, map[string]string{"job": "crank", "result": "ok"})
	if n > 0 {
		logger.Debug("cranked", "cranks", n)
	}
}

func (s *Service) epochJob() {
	if err := s.AdvanceEpoch(); err != nil {
		metricKeeperRuns().AddWithLabel(1, map[string]string{"job": "epoch", "result": "error"})
		logger.Warn("epoch advance failed", "err", err)
		return
	}
	metricKeeperRuns().AddWithLabel(1, map[string]string{"job": "epoch", "result": "ok"})
}

func (s *Service) save() error {
	if s.store == nil {
		return nil
	}
	return errors.WithMessage(s.ledger.Save(s.store), "save ledger")
}

func (s *Service) updateGauges() {
	l := s.ledger
	books := l.Books()
	pool := l.Pool()
	for kind, amount := range map[string]uint256.Int{
		"equity":    l.Equity(),
		"staked":    books.Working.Staked,
		"reserved":  books.Working.Reserved,
		"liquidity": pool.Liquidity(),
		"balance":   l.Balance(),
	} {
		metricLedgerAmounts().SetWithLabel(toMon(amount), map[string]string{"kind": kind})
	}
	metricValidators().Set(int64(len(l.Validators())))
}

// toMon truncates to whole MON for gauges.
func toMon(a uint256.Int) int64 {
	var whole uint256.Int
	whole.Div(&a, &shmon.Base)
	if !whole.IsUint64() || whole.Uint64() > 1<<62 {
		return 1 << 62
	}
	return int64(whole.Uint64())
}
