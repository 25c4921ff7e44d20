package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// Scheduler runs the background sweeps on cron cadences: recurrence
// materialization, message dispatch, and note extraction. Every sweep
// visits active tenants one at a time with a fresh context per tenant,
// so one tenant's identity can never bleed into the next iteration.
type Scheduler struct {
	cron       *cron.Cron
	store      *repository.Store
	recurrence *RecurrenceService
	messages   *MessageService
	extraction *ExtractionService
	logger     *zap.Logger
}

func NewScheduler(store *repository.Store, recurrence *RecurrenceService, messages *MessageService, extraction *ExtractionService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		store:      store,
		recurrence: recurrence,
		messages:   messages,
		extraction: extraction,
		logger:     logger,
	}
}

// Start registers the sweeps and launches the cron loop.
func (s *Scheduler) Start(recurrenceSpec, messageSpec, extractionSpec string) error {
	if _, err := s.cron.AddFunc(recurrenceSpec, s.RunRecurrenceSweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(messageSpec, s.RunMessageSweep); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(extractionSpec, s.RunExtractionSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("background scheduler started",
		zap.String("recurrence", recurrenceSpec),
		zap.String("messages", messageSpec),
		zap.String("extraction", extractionSpec),
	)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("background scheduler stopped")
}

// RunRecurrenceSweep materializes due recurring templates for every
// active tenant.
func (s *Scheduler) RunRecurrenceSweep() {
	s.forEachTenant("recurrence", func(ctx context.Context) (int, error) {
		return s.recurrence.MaterializeDue(ctx, time.Now().UTC())
	})
}

// RunMessageSweep dispatches due scheduled messages for every active
// tenant.
func (s *Scheduler) RunMessageSweep() {
	s.forEachTenant("messages", func(ctx context.Context) (int, error) {
		return s.messages.DispatchDue(ctx, time.Now().UTC(), 100)
	})
}

// RunExtractionSweep drains unprocessed notes through the extractor
// for every active tenant.
func (s *Scheduler) RunExtractionSweep() {
	s.forEachTenant("extraction", func(ctx context.Context) (int, error) {
		return s.extraction.ProcessUnprocessedNotes(ctx, 20)
	})
}

// forEachTenant runs fn once per active account. Each tenant gets its
// own context carrying only that tenant's identity; a failure in one
// tenant's unit of work is logged and the sweep moves on.
func (s *Scheduler) forEachTenant(sweep string, fn func(ctx context.Context) (int, error)) {
	ids, err := s.store.Users.ListActiveIDs(context.Background())
	if err != nil {
		s.logger.Error("sweep could not list tenants",
			zap.String("sweep", sweep),
			zap.Error(err),
		)
		return
	}

	total := 0
	for _, userID := range ids {
		ctx := utils.WithUserID(context.Background(), userID)
		n, err := fn(ctx)
		if err != nil {
			s.logger.Error("sweep failed for tenant",
				zap.String("sweep", sweep),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		total += n
	}
	if total > 0 {
		s.logger.Info("sweep finished",
			zap.String("sweep", sweep),
			zap.Int("processed", total),
		)
	}
}
