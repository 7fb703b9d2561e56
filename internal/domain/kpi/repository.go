package kpi

import "context"

type DefinitionRepository interface {
	GetByCode(ctx context.Context, code string, companyID string) (Definition, error)
	ListByCompany(ctx context.Context, companyID string) ([]Definition, error)
}

type ResultRepository interface {
	// Upsert overwrites the result keyed by (company, employee, kpi, period).
	Upsert(ctx context.Context, r Result) (Result, error)
	ListByCompanyPeriod(ctx context.Context, companyID, period string) ([]Result, error)
}

type EvaluationRepository interface {
	// GetScore returns the review score for the employee and period, or
	// ok=false when none exists.
	GetScore(ctx context.Context, employeeID, period, companyID string) (float64, bool, error)
}
