// File: internal/jobs/identity_reconcile.go
package jobs

import (
	"context"
	"errors"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/identity"
	"pcstore_backend/internal/user"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AccountAdopter is the part of user.Service the reconcile job needs.
type AccountAdopter interface {
	GetByIdentityID(ctx context.Context, identityID string) (*user.User, error)
	AdoptIdentity(ctx context.Context, acct identity.Account) (*user.User, error)
}

// IdentityReconcileJob completes registrations whose identity account exists without a
// local user record.
type IdentityReconcileJob struct {
	directory     identity.Directory
	users         AccountAdopter
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewIdentityReconcileJob creates a new IdentityReconcileJob.
func NewIdentityReconcileJob(
	directory identity.Directory,
	users AccountAdopter,
	logger *zap.Logger,
	cfg *config.Config,
) *IdentityReconcileJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)

	return &IdentityReconcileJob{
		directory:     directory,
		users:         users,
		logger:        logger.Named("IdentityReconcileJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *IdentityReconcileJob) SetupAndStart() error {
	jobSpec := j.cfg.IdentityReconcileSchedule
	if jobSpec == "" {
		j.logger.Warn("Identity reconcile schedule not defined (IDENTITY_RECONCILE_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule identity reconcile job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Identity reconcile job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *IdentityReconcileJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("Identity reconcile job run failed", zap.Error(err))
	}
}

// RunOnce adopts every provider account that has no local user and returns how many
// were adopted. A failure on one account does not stop the others.
func (j *IdentityReconcileJob) RunOnce(ctx context.Context) (int, error) {
	j.logger.Info("Starting identity reconcile run...")
	accounts, err := j.directory.ListAccounts(ctx)
	if err != nil {
		return 0, err
	}

	adopted, failed := 0, 0
	for _, acct := range accounts {
		if ctx.Err() != nil {
			return adopted, ctx.Err()
		}
		_, err := j.users.GetByIdentityID(ctx, acct.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			failed++
			j.logger.Warn("Lookup failed during reconcile", zap.String("identityId", acct.ID), zap.Error(err))
			continue
		}
		if _, err := j.users.AdoptIdentity(ctx, acct); err != nil {
			failed++
			j.logger.Error("Failed to adopt orphaned identity", zap.String("identityId", acct.ID), zap.Error(err))
			continue
		}
		adopted++
	}

	j.logger.Info("Identity reconcile run completed",
		zap.Int("accounts_checked", len(accounts)),
		zap.Int("accounts_adopted", adopted),
		zap.Int("accounts_failed", failed),
	)
	return adopted, nil
}

// Stop gracefully stops the cron scheduler.
func (j *IdentityReconcileJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping identity reconcile job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Identity reconcile job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Identity reconcile job scheduler stop timed out.")
		}
	}
}
