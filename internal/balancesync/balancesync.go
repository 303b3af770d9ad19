// Package balancesync rebuilds every balance projection from the ledger log.
package balancesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrSyncInProgress = errors.New("balance sync is already running")

//go:generate mockgen -source=balancesync.go -destination=mock_balancesync.go -package=balancesync
type Ledger interface {
	UserIDs(ctx context.Context) ([]int, error)
	Rebuild(ctx context.Context, userID int) (bool, error)
}

type Report struct {
	Scanned   int           `json:"scanned"`
	Corrected int           `json:"corrected"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"-"`
}

type Service struct {
	ledger  Ledger
	workers int
	running atomic.Bool
}

func New(ledger Ledger, workers int) *Service {
	return &Service{
		ledger:  ledger,
		workers: workers,
	}
}

// Sync fans the rebuild of each user's projection out over a worker pool.
// Only one sync runs at a time.
func (s *Service) Sync(ctx context.Context) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	ids, err := s.ledger.UserIDs(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch balance owners", zap.Error(err))
		return nil, err
	}

	wp := NewWorkerPool(s.workers)
	var (
		corrected, failed atomic.Int64
		wg                sync.WaitGroup
		g                 errgroup.Group
	)
	for _, id := range ids {
		id := id
		wg.Add(1)
		g.Go(func() error {
			err := wp.AddTask(ctx, func() error {
				defer wg.Done()
				fixed, err := s.ledger.Rebuild(ctx, id)
				if err != nil {
					failed.Add(1)
					return fmt.Errorf("failed to rebuild balance of user %d: %w", id, err)
				}
				if fixed {
					corrected.Add(1)
				}
				return nil
			})
			if err != nil {
				wg.Done()
				failed.Add(1)
				return err
			}
			return nil
		})
	}

	gErr := g.Wait()
	wg.Wait()
	wp.Close()

	report := &Report{
		Scanned:   len(ids),
		Corrected: int(corrected.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	zap.L().Info("Balance sync finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("corrected", report.Corrected),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
	)
	if gErr != nil {
		return report, gErr
	}
	return report, nil
}
