package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type kpiDefinitionRepositoryImpl struct {
	db *database.DB
}

func NewKPIDefinitionRepository(db *database.DB) kpi.DefinitionRepository {
	return &kpiDefinitionRepositoryImpl{db: db}
}

const kpiDefinitionColumns = `
	id, company_id, code, name, unit, source, formula, target,
	green_threshold, yellow_threshold, created_at
`

func (r *kpiDefinitionRepositoryImpl) GetByCode(ctx context.Context, code string, companyID string) (kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + kpiDefinitionColumns + `
		FROM kpi_definitions
		WHERE code = $1 AND company_id = $2
	`

	var d kpi.Definition
	err := q.QueryRow(ctx, query, code, companyID).Scan(
		&d.ID, &d.CompanyID, &d.Code, &d.Name, &d.Unit, &d.Source, &d.Formula, &d.Target,
		&d.GreenThreshold, &d.YellowThreshold, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kpi.Definition{}, kpi.ErrDefinitionNotFound
		}
		return kpi.Definition{}, err
	}

	return d, nil
}

func (r *kpiDefinitionRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + kpiDefinitionColumns + `
		FROM kpi_definitions
		WHERE company_id = $1
		ORDER BY code
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var definitions []kpi.Definition
	for rows.Next() {
		var d kpi.Definition
		err := rows.Scan(
			&d.ID, &d.CompanyID, &d.Code, &d.Name, &d.Unit, &d.Source, &d.Formula, &d.Target,
			&d.GreenThreshold, &d.YellowThreshold, &d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, d)
	}

	return definitions, rows.Err()
}

type kpiResultRepositoryImpl struct {
	db *database.DB
}

func NewKPIResultRepository(db *database.DB) kpi.ResultRepository {
	return &kpiResultRepositoryImpl{db: db}
}

func (r *kpiResultRepositoryImpl) Upsert(ctx context.Context, res kpi.Result) (kpi.Result, error) {
	q := GetQuerier(ctx, r.db)

	detail, err := json.Marshal(res.Detail)
	if err != nil {
		return kpi.Result{}, err
	}

	query := `
		INSERT INTO kpi_results (
			id, company_id, employee_id, kpi_id, period,
			value, compliance_pct, severity, insufficient_data, detail, computed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (company_id, employee_id, kpi_id, period) DO UPDATE SET
			value = EXCLUDED.value,
			compliance_pct = EXCLUDED.compliance_pct,
			severity = EXCLUDED.severity,
			insufficient_data = EXCLUDED.insufficient_data,
			detail = EXCLUDED.detail,
			computed_at = EXCLUDED.computed_at
		RETURNING id
	`

	err = q.QueryRow(ctx, query,
		res.ID, res.CompanyID, res.EmployeeID, res.KpiID, res.Period,
		res.Value, res.CompliancePct, res.Severity, res.InsufficientData, detail, res.ComputedAt,
	).Scan(&res.ID)
	if err != nil {
		return kpi.Result{}, err
	}

	return res, nil
}

func (r *kpiResultRepositoryImpl) ListByCompanyPeriod(ctx context.Context, companyID, period string) ([]kpi.Result, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, kpi_id, period,
			   value, compliance_pct, severity, insufficient_data, detail, computed_at
		FROM kpi_results
		WHERE company_id = $1 AND period = $2
		ORDER BY kpi_id, employee_id
	`

	rows, err := q.Query(ctx, query, companyID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []kpi.Result
	for rows.Next() {
		var (
			res    kpi.Result
			detail []byte
		)
		err := rows.Scan(
			&res.ID, &res.CompanyID, &res.EmployeeID, &res.KpiID, &res.Period,
			&res.Value, &res.CompliancePct, &res.Severity, &res.InsufficientData, &detail, &res.ComputedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &res.Detail); err != nil {
				return nil, err
			}
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

type kpiEvaluationRepositoryImpl struct {
	db *database.DB
}

func NewKPIEvaluationRepository(db *database.DB) kpi.EvaluationRepository {
	return &kpiEvaluationRepositoryImpl{db: db}
}

func (r *kpiEvaluationRepositoryImpl) GetScore(ctx context.Context, employeeID, period, companyID string) (float64, bool, error) {
	q := GetQuerier(ctx, r.db)

	var score float64
	err := q.QueryRow(ctx, `
		SELECT score FROM evaluation_scores
		WHERE employee_id = $1 AND period = $2 AND company_id = $3
		ORDER BY recorded_at DESC
		LIMIT 1
	`, employeeID, period, companyID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return score, true, nil
}
