package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, req leave.Request) (leave.Request, error) {
	query := `
		INSERT INTO leave_requests (
			id, company_id, employee_id, leave_type_id,
			start_date, end_date, business_days, period,
			status, reason, document_ref, submitted_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			NOW(), NOW()
		) RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.LeaveTypeID,
		req.StartDate, req.EndDate, req.BusinessDays, req.Period,
		req.Status, req.Reason, req.DocumentRef, req.SubmittedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.Request{}, err
	}

	return req, nil
}

const leaveRequestColumns = `
	lr.id, lr.company_id, lr.employee_id, lr.leave_type_id,
	lr.start_date, lr.end_date, lr.business_days, lr.period,
	lr.status, lr.reason, lr.document_ref,
	lr.approved_by, lr.approved_at, lr.cancelled_by, lr.cancelled_at,
	lr.submitted_at, lr.created_at, lr.updated_at,
	lt.name, e.full_name
`

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lt.id = lr.leave_type_id
		INNER JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1 AND lr.company_id = $2
	`

	var req leave.Request
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.BusinessDays, &req.Period,
		&req.Status, &req.Reason, &req.DocumentRef,
		&req.ApprovedBy, &req.ApprovedAt, &req.CancelledBy, &req.CancelledAt,
		&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt,
		&req.LeaveTypeName, &req.EmployeeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, err
	}

	return req, nil
}

func (r *leaveRequestRepositoryImpl) ListByCompany(ctx context.Context, companyID string, status *leave.RequestStatus) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN leave_types lt ON lt.id = lr.leave_type_id
		INNER JOIN employees e ON e.id = lr.employee_id
		WHERE lr.company_id = $1
		  AND ($2::text IS NULL OR lr.status = $2)
		ORDER BY lr.submitted_at DESC
	`

	rows, err := q.Query(ctx, query, companyID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		err := rows.Scan(
			&req.ID, &req.CompanyID, &req.EmployeeID, &req.LeaveTypeID,
			&req.StartDate, &req.EndDate, &req.BusinessDays, &req.Period,
			&req.Status, &req.Reason, &req.DocumentRef,
			&req.ApprovedBy, &req.ApprovedAt, &req.CancelledBy, &req.CancelledAt,
			&req.SubmittedAt, &req.CreatedAt, &req.UpdatedAt,
			&req.LeaveTypeName, &req.EmployeeName,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, req leave.Request) error {
	query := `
		UPDATE leave_requests SET
			status = $1,
			approved_by = $2,
			approved_at = $3,
			cancelled_by = $4,
			cancelled_at = $5,
			updated_at = NOW()
		WHERE id = $6 AND company_id = $7
	`

	tag, err := tx.Exec(ctx, query,
		req.Status, req.ApprovedBy, req.ApprovedAt, req.CancelledBy, req.CancelledAt,
		req.ID, req.CompanyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrRequestNotFound
	}

	return nil
}

func (r *leaveRequestRepositoryImpl) HasApprovedFullDayCovering(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND company_id = $2 AND status = $3
			  AND start_date <= $4 AND end_date >= $4
		)
	`, employeeID, companyID, leave.StatusApproved, date).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

type leaveApprovalRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApprovalRepository(db *database.DB) leave.ApprovalRepository {
	return &leaveApprovalRepositoryImpl{db: db}
}

func (r *leaveApprovalRepositoryImpl) Append(ctx context.Context, tx pgx.Tx, a leave.Approval) error {
	query := `
		INSERT INTO leave_approvals (id, company_id, request_id, actor_id, action, comment, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		a.ID, a.CompanyID, a.RequestID, a.ActorID, a.Action, a.Comment, a.RecordedAt,
	)
	return err
}

func (r *leaveApprovalRepositoryImpl) ListByRequest(ctx context.Context, requestID string, companyID string) ([]leave.Approval, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, request_id, actor_id, action, comment, recorded_at
		FROM leave_approvals
		WHERE request_id = $1 AND company_id = $2
		ORDER BY recorded_at
	`

	rows, err := q.Query(ctx, query, requestID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []leave.Approval
	for rows.Next() {
		var a leave.Approval
		err := rows.Scan(&a.ID, &a.CompanyID, &a.RequestID, &a.ActorID, &a.Action, &a.Comment, &a.RecordedAt)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}

	return approvals, rows.Err()
}
