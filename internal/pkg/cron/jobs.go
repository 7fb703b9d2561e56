package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/config"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/reconcile"
)

// RegisterJobs wires the recurring batch jobs: per-company daily
// reconciliation and KPI evaluation. Intervals come from configuration.
func RegisterJobs(
	s *Scheduler,
	cfg config.ReconcileConfig,
	companyRepo company.CompanyRepository,
	reconcileSvc *reconcile.Service,
	kpiSvc *kpi.Service,
) {
	s.AddJob("reconcile-daily-summaries", cfg.ScheduleEvery, func(ctx context.Context) error {
		return forEachCompany(ctx, companyRepo, func(ctx context.Context, companyID string) error {
			comp, err := companyRepo.GetByID(ctx, companyID)
			if err != nil {
				return fmt.Errorf("get company %s: %w", companyID, err)
			}
			loc, err := time.LoadLocation(comp.Timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone for company %s: %w", companyID, err)
			}
			// Yesterday and today both rebuild, on the company-local
			// calendar: late events for the previous day keep arriving
			// after midnight.
			now := time.Now().In(loc)
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			for _, date := range []time.Time{today.AddDate(0, 0, -1), today} {
				if _, err := reconcileSvc.ReconcileCompanyDay(ctx, companyID, date); err != nil {
					return fmt.Errorf("reconcile company %s for %s: %w", companyID, date.Format("2006-01-02"), err)
				}
			}
			return nil
		})
	})

	s.AddJob("evaluate-kpis", cfg.KPIEvalEvery, func(ctx context.Context) error {
		return forEachCompany(ctx, companyRepo, func(ctx context.Context, companyID string) error {
			period := time.Now().UTC().Format("2006-01")
			if _, err := kpiSvc.EvaluateCompany(ctx, companyID, period); err != nil {
				return fmt.Errorf("evaluate kpis for company %s: %w", companyID, err)
			}
			return nil
		})
	})
}

// forEachCompany runs fn for every tenant, logging per-company failures
// and continuing so one bad tenant never starves the rest.
func forEachCompany(ctx context.Context, companyRepo company.CompanyRepository, fn func(ctx context.Context, companyID string) error) error {
	ids, err := companyRepo.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}

	var failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(ctx, id); err != nil {
			failed++
			slog.Error("Company job failed", "company_id", id, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d companies failed", failed, len(ids))
	}
	return nil
}
