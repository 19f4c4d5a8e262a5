package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
)

const (
	JobDealExpire           = "deal-expire"
	JobDealActivate         = "deal-activate"
	JobDealExpirationAlerts = "deal-expiration-alerts"
)

// DealSweeper is the deal lifecycle surface driven by the scheduler.
type DealSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	SweepActivate(ctx context.Context, now time.Time) (int64, error)
}

// ExpiryScanner emits deal expiration alerts for favorited price points.
type ExpiryScanner interface {
	ScanExpiringDeals(ctx context.Context, now time.Time) (int, error)
}

// DealJobsParams configures the deal lifecycle jobs.
type DealJobsParams struct {
	Logger *logger.Logger
	Deals  DealSweeper
	Expiry ExpiryScanner
}

// NewDealJobs returns the jobs in execution order: expired deals are removed
// before upcoming ones are activated and expiring ones announced.
func NewDealJobs(params DealJobsParams) ([]Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Deals == nil {
		return nil, fmt.Errorf("deal sweeper required")
	}
	if params.Expiry == nil {
		return nil, fmt.Errorf("expiry scanner required")
	}
	logg := params.Logger
	return []Job{
		&dealExpireJob{logg: logg, deals: params.Deals},
		&dealActivateJob{logg: logg, deals: params.Deals},
		&expirationAlertJob{logg: logg, expiry: params.Expiry},
	}, nil
}

type dealExpireJob struct {
	logg  *logger.Logger
	deals DealSweeper
}

func (j *dealExpireJob) Name() string { return JobDealExpire }

func (j *dealExpireJob) Run(ctx context.Context, now time.Time) error {
	removed, err := j.deals.SweepExpired(ctx, now)
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "expired deals removed")
	}
	return err
}

type dealActivateJob struct {
	logg  *logger.Logger
	deals DealSweeper
}

func (j *dealActivateJob) Name() string { return JobDealActivate }

func (j *dealActivateJob) Run(ctx context.Context, now time.Time) error {
	activated, err := j.deals.SweepActivate(ctx, now)
	if err != nil {
		return err
	}
	if activated > 0 {
		j.logg.Info(j.logg.WithField(ctx, "activated", activated), "deals activated")
	}
	return nil
}

type expirationAlertJob struct {
	logg   *logger.Logger
	expiry ExpiryScanner
}

func (j *expirationAlertJob) Name() string { return JobDealExpirationAlerts }

func (j *expirationAlertJob) Run(ctx context.Context, now time.Time) error {
	sent, err := j.expiry.ScanExpiringDeals(ctx, now)
	if err != nil {
		return err
	}
	if sent > 0 {
		j.logg.Info(j.logg.WithField(ctx, "alerts", sent), "deal expiration alerts sent")
	}
	return nil
}
