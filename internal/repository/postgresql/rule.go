package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type attendanceRuleRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRuleRepository(db *database.DB) rule.RuleRepository {
	return &attendanceRuleRepositoryImpl{db: db}
}

func (r *attendanceRuleRepositoryImpl) GetCurrentByCompanyID(ctx context.Context, companyID string) (rule.AttendanceRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, tardiness_threshold_min, overtime_mode, geofence_id, allowed_ips, created_at
		FROM attendance_rules
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var ar rule.AttendanceRule
	err := q.QueryRow(ctx, query, companyID).Scan(
		&ar.ID,
		&ar.CompanyID,
		&ar.TardinessThresholdMin,
		&ar.OvertimeMode,
		&ar.GeofenceID,
		&ar.AllowedIPs,
		&ar.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.AttendanceRule{}, rule.ErrRuleNotFound
		}
		return rule.AttendanceRule{}, err
	}

	return ar, nil
}

type geofenceRepositoryImpl struct {
	db *database.DB
}

func NewGeofenceRepository(db *database.DB) rule.GeofenceRepository {
	return &geofenceRepositoryImpl{db: db}
}

func (r *geofenceRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (rule.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, coordinates, created_at
		FROM geofences
		WHERE id = $1 AND company_id = $2
	`

	var g rule.Geofence
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&g.ID,
		&g.CompanyID,
		&g.Name,
		&g.Coordinates,
		&g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rule.Geofence{}, rule.ErrGeofenceNotFound
		}
		return rule.Geofence{}, err
	}

	return g, nil
}
