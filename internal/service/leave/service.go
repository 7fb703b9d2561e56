package leave

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/events"
)

// TxRunner runs fn inside a database transaction. Satisfied by the
// postgresql package's WithTransaction wrapper.
type TxRunner func(ctx context.Context, fn func(tx pgx.Tx) error) error

// Service owns the leave request workflow: submission, the approval
// state machine and the balance ledger. Every state change commits
// atomically with its audit row and any balance adjustment.
type Service struct {
	employeeRepo employee.EmployeeRepository
	typeRepo     leave.TypeRepository
	requestRepo  leave.RequestRepository
	approvalRepo leave.ApprovalRepository
	balanceRepo  leave.BalanceRepository
	holidayRepo  leave.HolidayRepository
	runTx        TxRunner
	hub          *events.Hub
}

func NewService(
	employeeRepo employee.EmployeeRepository,
	typeRepo leave.TypeRepository,
	requestRepo leave.RequestRepository,
	approvalRepo leave.ApprovalRepository,
	balanceRepo leave.BalanceRepository,
	holidayRepo leave.HolidayRepository,
	runTx TxRunner,
	hub *events.Hub,
) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		typeRepo:     typeRepo,
		requestRepo:  requestRepo,
		approvalRepo: approvalRepo,
		balanceRepo:  balanceRepo,
		holidayRepo:  holidayRepo,
		runTx:        runTx,
		hub:          hub,
	}
}

// Submit creates a pending leave request. Business days are counted
// now (weekends and company holidays excluded) and frozen into the
// request. Balance-affecting types must have enough available days.
func (s *Service) Submit(ctx context.Context, companyID string, req *leave.SubmitRequest) (leave.Request, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return leave.Request{}, errs
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.Active() {
		return leave.Request{}, employee.ErrEmployeeRetired
	}

	leaveType, err := s.typeRepo.GetByID(ctx, req.LeaveTypeID, companyID)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return leave.Request{}, leave.ErrInvalidDateRange
	}

	holidays, err := s.holidayRepo.ListRange(ctx, companyID, start, end)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to list holidays: %w", err)
	}
	days := BusinessDays(start, end, holidays)
	period := strconv.Itoa(start.Year())

	if leaveType.AffectsBalance {
		balance, err := s.balanceRepo.GetByKey(ctx, req.EmployeeID, period, companyID)
		if err != nil {
			return leave.Request{}, fmt.Errorf("failed to get leave balance: %w", err)
		}
		if balance.DaysAvailable < days {
			return leave.Request{}, leave.ErrInsufficientBalance
		}
	}

	now := time.Now().UTC()
	request := leave.Request{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		EmployeeID:   req.EmployeeID,
		LeaveTypeID:  req.LeaveTypeID,
		StartDate:    start,
		EndDate:      end,
		BusinessDays: days,
		Period:       period,
		Status:       leave.StatusPending,
		Reason:       req.Reason,
		DocumentRef:  req.DocumentRef,
		SubmittedAt:  now,
	}

	var stored leave.Request
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		stored, err = s.requestRepo.Create(ctx, tx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return s.appendAudit(ctx, tx, stored, req.EmployeeID, leave.ActionSubmit, nil)
	})
	if err != nil {
		return leave.Request{}, err
	}

	return stored, nil
}

// Approve moves a pending request to approved and, for
// balance-affecting types, consumes the frozen business days.
func (s *Service) Approve(ctx context.Context, companyID, requestID, approverID string, req *leave.DecisionRequest) (leave.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID, companyID)
	if err != nil {
		return leave.Request{}, err
	}
	if !leave.CanTransition(request.Status, leave.StatusApproved) {
		return leave.Request{}, fmt.Errorf("%w: %s -> %s", leave.ErrInvalidTransition, request.Status, leave.StatusApproved)
	}
	if err := s.authorizeApprover(ctx, companyID, approverID, request.EmployeeID); err != nil {
		return leave.Request{}, err
	}

	leaveType, err := s.typeRepo.GetByID(ctx, request.LeaveTypeID, companyID)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	now := time.Now().UTC()
	request.Status = leave.StatusApproved
	request.ApprovedBy = &approverID
	request.ApprovedAt = &now

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if leaveType.AffectsBalance {
			// The submit-time check can go stale: another request may
			// have consumed the days since. Re-validate before writing.
			balance, err := s.balanceRepo.GetByKey(ctx, request.EmployeeID, request.Period, companyID)
			if err != nil {
				return fmt.Errorf("failed to get leave balance: %w", err)
			}
			if balance.DaysAvailable < request.BusinessDays {
				return leave.ErrInsufficientBalance
			}
		}
		if err := s.requestRepo.UpdateStatus(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		if err := s.appendAudit(ctx, tx, request, approverID, leave.ActionApprove, req.Comment); err != nil {
			return err
		}
		if leaveType.AffectsBalance {
			if err := s.balanceRepo.AdjustConsumed(ctx, tx, request.EmployeeID, request.Period, companyID, request.BusinessDays); err != nil {
				return fmt.Errorf("failed to adjust leave balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.Request{}, err
	}

	s.hub.Publish(events.Event{
		Kind:      events.KindLeaveApproved,
		CompanyID: companyID,
		Payload:   request,
	})

	return request, nil
}

// Reject moves a pending request to rejected. Balances are untouched;
// nothing was consumed while pending.
func (s *Service) Reject(ctx context.Context, companyID, requestID, approverID string, req *leave.DecisionRequest) (leave.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID, companyID)
	if err != nil {
		return leave.Request{}, err
	}
	if !leave.CanTransition(request.Status, leave.StatusRejected) {
		return leave.Request{}, fmt.Errorf("%w: %s -> %s", leave.ErrInvalidTransition, request.Status, leave.StatusRejected)
	}
	if err := s.authorizeApprover(ctx, companyID, approverID, request.EmployeeID); err != nil {
		return leave.Request{}, err
	}

	request.Status = leave.StatusRejected

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.requestRepo.UpdateStatus(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return s.appendAudit(ctx, tx, request, approverID, leave.ActionReject, req.Comment)
	})
	if err != nil {
		return leave.Request{}, err
	}

	return request, nil
}

// Cancel moves a pending or approved request to cancelled. Cancelling
// an approved balance-affecting request returns its consumed days. The
// requester may always cancel their own request; anyone else must pass
// the approver check.
func (s *Service) Cancel(ctx context.Context, companyID, requestID, actorID string, req *leave.DecisionRequest) (leave.Request, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID, companyID)
	if err != nil {
		return leave.Request{}, err
	}
	if !leave.CanTransition(request.Status, leave.StatusCancelled) {
		return leave.Request{}, fmt.Errorf("%w: %s -> %s", leave.ErrInvalidTransition, request.Status, leave.StatusCancelled)
	}
	if actorID != request.EmployeeID {
		if err := s.authorizeApprover(ctx, companyID, actorID, request.EmployeeID); err != nil {
			return leave.Request{}, err
		}
	}

	wasApproved := request.Status == leave.StatusApproved

	leaveType, err := s.typeRepo.GetByID(ctx, request.LeaveTypeID, companyID)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to get leave type: %w", err)
	}

	now := time.Now().UTC()
	request.Status = leave.StatusCancelled
	request.CancelledBy = &actorID
	request.CancelledAt = &now

	err = s.runTx(ctx, func(tx pgx.Tx) error {
		if err := s.requestRepo.UpdateStatus(ctx, tx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		if err := s.appendAudit(ctx, tx, request, actorID, leave.ActionCancel, req.Comment); err != nil {
			return err
		}
		if wasApproved && leaveType.AffectsBalance {
			if err := s.balanceRepo.AdjustConsumed(ctx, tx, request.EmployeeID, request.Period, companyID, -request.BusinessDays); err != nil {
				return fmt.Errorf("failed to restore leave balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.Request{}, err
	}

	return request, nil
}

// GetByID returns the request with its approval trail.
func (s *Service) GetByID(ctx context.Context, companyID, requestID string) (leave.Request, []leave.Approval, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID, companyID)
	if err != nil {
		return leave.Request{}, nil, err
	}
	trail, err := s.approvalRepo.ListByRequest(ctx, requestID, companyID)
	if err != nil {
		return leave.Request{}, nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return request, trail, nil
}

// List returns the company's requests, optionally filtered by status.
func (s *Service) List(ctx context.Context, companyID string, status *leave.RequestStatus) ([]leave.Request, error) {
	return s.requestRepo.ListByCompany(ctx, companyID, status)
}

// Balances returns the company's leave ledger for a period.
func (s *Service) Balances(ctx context.Context, companyID, period string) ([]leave.Balance, error) {
	return s.balanceRepo.ListByCompanyPeriod(ctx, companyID, period)
}

// authorizeApprover requires an active employee of the same company
// who is not the requester. Self-approval is never allowed.
func (s *Service) authorizeApprover(ctx context.Context, companyID, approverID, requesterID string) error {
	if approverID == requesterID {
		return leave.ErrUnauthorizedApprover
	}
	approver, err := s.employeeRepo.GetByID(ctx, approverID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return leave.ErrUnauthorizedApprover
		}
		return fmt.Errorf("failed to get approver: %w", err)
	}
	if !approver.Active() {
		return leave.ErrUnauthorizedApprover
	}
	return nil
}

func (s *Service) appendAudit(ctx context.Context, tx pgx.Tx, request leave.Request, actorID string, action leave.ApprovalAction, comment *string) error {
	audit := leave.Approval{
		ID:         uuid.New().String(),
		CompanyID:  request.CompanyID,
		RequestID:  request.ID,
		ActorID:    actorID,
		Action:     action,
		Comment:    comment,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.approvalRepo.Append(ctx, tx, audit); err != nil {
		return fmt.Errorf("failed to append approval audit: %w", err)
	}
	return nil
}
