package postgresql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type eventRepositoryImpl struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) event.EventRepository {
	return &eventRepositoryImpl{db: db}
}

func (r *eventRepositoryImpl) CreateWithNormalization(ctx context.Context, ev event.Event, norm event.Normalization) (event.Normalized, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		insertEvent := `
			INSERT INTO attendance_events (
				id, company_id, employee_id, type, recorded_at, source,
				latitude, longitude, device_id, photo_ref, client_ip, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, $8, $9, $10, $11, NOW()
			) RETURNING seq, created_at
		`
		err := tx.QueryRow(ctx, insertEvent,
			ev.ID, ev.CompanyID, ev.EmployeeID, ev.Kind, ev.RecordedAt, ev.Source,
			ev.Latitude, ev.Longitude, ev.DeviceID, ev.PhotoRef, ev.ClientIP,
		).Scan(&ev.Seq, &ev.CreatedAt)
		if err != nil {
			return err
		}

		insertNorm := `
			INSERT INTO event_normalizations (
				event_id, within_geofence, missing_gps, missing_photo, ip_allowed, normalized_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.Exec(ctx, insertNorm,
			norm.EventID, norm.WithinGeofence, norm.MissingGPS, norm.MissingPhoto, norm.IPAllowed, norm.NormalizedAt,
		)
		return err
	})
	if err != nil {
		return event.Normalized{}, err
	}

	return event.Normalized{Event: ev, Normalization: norm}, nil
}

const normalizedColumns = `
	e.id, e.company_id, e.employee_id, e.type, e.recorded_at, e.source,
	e.latitude, e.longitude, e.device_id, e.photo_ref, e.client_ip, e.seq, e.created_at,
	n.within_geofence, n.missing_gps, n.missing_photo, n.ip_allowed, n.normalized_at
`

func (r *eventRepositoryImpl) ListForEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time, companyID string) ([]event.Normalized, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + normalizedColumns + `
		FROM attendance_events e
		INNER JOIN event_normalizations n ON n.event_id = e.id
		WHERE e.employee_id = $1 AND e.company_id = $2
		  AND e.recorded_at >= $3 AND e.recorded_at < $4
		ORDER BY e.recorded_at, e.seq
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNormalized(rows)
}

func (r *eventRepositoryImpl) ListForCompanyWindow(ctx context.Context, companyID string, from, to time.Time) ([]event.Normalized, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + normalizedColumns + `
		FROM attendance_events e
		INNER JOIN event_normalizations n ON n.event_id = e.id
		WHERE e.company_id = $1 AND e.recorded_at >= $2 AND e.recorded_at < $3
		ORDER BY e.recorded_at, e.seq
	`

	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNormalized(rows)
}

func scanNormalized(rows pgx.Rows) ([]event.Normalized, error) {
	var events []event.Normalized
	for rows.Next() {
		var ev event.Normalized
		err := rows.Scan(
			&ev.ID,
			&ev.CompanyID,
			&ev.EmployeeID,
			&ev.Kind,
			&ev.RecordedAt,
			&ev.Source,
			&ev.Latitude,
			&ev.Longitude,
			&ev.DeviceID,
			&ev.PhotoRef,
			&ev.ClientIP,
			&ev.Seq,
			&ev.CreatedAt,
			&ev.WithinGeofence,
			&ev.MissingGPS,
			&ev.MissingPhoto,
			&ev.IPAllowed,
			&ev.NormalizedAt,
		)
		if err != nil {
			return nil, err
		}
		ev.EventID = ev.ID
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (r *eventRepositoryImpl) DeviceExists(ctx context.Context, deviceID string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1 AND company_id = $2)`,
		deviceID, companyID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
