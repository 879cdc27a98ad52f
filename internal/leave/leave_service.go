package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	"github.com/jackson951/flexileave-app-sub001/internal/balance"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	leaveerrors "github.com/jackson951/flexileave-app-sub001/internal/leave/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FilePurger removes bytes and records of files detached by a deleted leave.
type FilePurger interface {
	PurgeOrphans(ctx context.Context, ids []uuid.UUID) error
}

// ReviewerDirectory lists the active users who review leave requests.
type ReviewerDirectory interface {
	FindReviewerIDs(ctx context.Context) ([]uuid.UUID, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor domain.Actor, filter ListLeavesFilter) ([]LeaveResponse, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	ledger    balance.Ledger
	files     attachment.Repository
	purger    FilePurger
	emitter   notification.Emitter
	reviewers ReviewerDirectory
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger balance.Ledger,
	files attachment.Repository,
	purger FilePurger,
	emitter notification.Emitter,
	reviewers ReviewerDirectory,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, ledger, files, purger, emitter, reviewers, time.Now, logger...)
}

func NewServiceWithClock(
	db *sql.DB,
	repo Repository,
	ledger balance.Ledger,
	files attachment.Repository,
	purger FilePurger,
	emitter notification.Emitter,
	reviewers ReviewerDirectory,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		ledger:    ledger,
		files:     files,
		purger:    purger,
		emitter:   emitter,
		reviewers: reviewers,
		now:       now,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("actor_id", actor.UserID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	lt, err := balance.ParseLeaveType(req.LeaveType)
	if err != nil {
		return LeaveResponse{}, err
	}
	startDate, endDate, err := s.parseRange(req.StartDate, req.EndDate, true)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	fileIDs, err := parseFileIDs(req.FileIDs)
	if err != nil {
		return LeaveResponse{}, err
	}
	reviewers, err := s.reviewers.FindReviewerIDs(ctx)
	if err != nil {
		s.logger.Error("create leave reviewer lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	days := CountDays(startDate, endDate)

	// Available locks the user's balance row, which also serializes the
	// overlap check below for concurrent requests of the same user.
	if _, err := s.ledger.WithTx(tx).Available(ctx, userID, lt, days); err != nil {
		return LeaveResponse{}, err
	}
	if err := s.checkOverlap(ctx, qtx, userID, startDate, endDate, nil); err != nil {
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l := &Leave{
		ID:               uuid.New(),
		UserID:           userID,
		LeaveType:        lt.String(),
		StartDate:        startDate,
		EndDate:          endDate,
		Days:             days,
		Reason:           strings.TrimSpace(req.Reason),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		EmergencyPhone:   strings.TrimSpace(req.EmergencyPhone),
		Status:           StatusPending,
		SubmittedAt:      now,
	}
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if len(fileIDs) > 0 {
		if err := s.files.WithTx(tx).Attach(ctx, l.ID, fileIDs); err != nil {
			s.logger.Warn("create leave attach files failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	recipients := make([]uuid.UUID, 0, len(reviewers))
	for _, id := range reviewers {
		if id != userID {
			recipients = append(recipients, id)
		}
	}
	msg := fmt.Sprintf("A %s request for %d day(s) from %s to %s is awaiting review.",
		l.LeaveType, l.Days, l.StartDate.Format(DateLayout), l.EndDate.Format(DateLayout))
	if err := s.notify(ctx, tx, l, userID, recipients, notification.TypeLeaveSubmitted, "New leave request", msg); err != nil {
		return LeaveResponse{}, err
	}

	created, err := qtx.FindByID(ctx, l.ID)
	if err != nil {
		s.logger.Error("create leave reload failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.emitter.Invalidate(ctx, recipients...)

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("days", days),
	)
	return mapToResponse(*created), nil
}

func (s *service) GetAll(ctx context.Context, actor domain.Actor, filter ListLeavesFilter) ([]LeaveResponse, int64, error) {
	q := ListQuery{
		Status:   strings.ToLower(strings.TrimSpace(filter.Status)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, 0, leaveerrors.ErrInvalidStatusFilter
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	switch {
	case !actor.CanReview():
		uid, err := uuid.Parse(actor.UserID)
		if err != nil {
			return nil, 0, leaveerrors.ErrInvalidActorID
		}
		q.UserID = &uid
	case filter.UserID != "":
		uid, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, 0, leaveerrors.ErrInvalidUserID
		}
		q.UserID = &uid
	}

	leaves, total, err := s.repo.FindAll(ctx, q)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(leaves), total, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !actor.CanReview() && l.UserID.String() != actor.UserID {
		return LeaveResponse{}, leaveerrors.ErrLeaveForbidden
	}
	return mapToResponse(*l), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("update leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
	)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	attachIDs, err := parseFileIDs(req.FileIDs)
	if err != nil {
		return LeaveResponse{}, err
	}
	removeIDs, err := parseFileIDs(req.RemoveFileIDs)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := s.lock(ctx, qtx, leaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !owns(actor, l) && !actor.IsAdmin() {
		s.logger.Warn("update leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.UserID),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveForbidden
	}
	if l.Status != StatusPending {
		s.logger.Warn("update leave invalid status",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.InvalidTransition(l.Status, StatusPending)
	}

	if req.LeaveType != nil {
		lt, err := balance.ParseLeaveType(*req.LeaveType)
		if err != nil {
			return LeaveResponse{}, err
		}
		l.LeaveType = lt.String()
	}
	if req.StartDate != nil || req.EndDate != nil {
		start := l.StartDate.Format(DateLayout)
		end := l.EndDate.Format(DateLayout)
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		startDate, endDate, err := s.parseRange(start, end, req.StartDate != nil)
		if err != nil {
			s.logger.Warn("update leave validation failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		l.StartDate, l.EndDate = startDate, endDate
		l.Days = CountDays(startDate, endDate)
	}
	if req.Reason != nil {
		l.Reason = strings.TrimSpace(*req.Reason)
	}
	if req.EmergencyContact != nil {
		l.EmergencyContact = strings.TrimSpace(*req.EmergencyContact)
	}
	if req.EmergencyPhone != nil {
		l.EmergencyPhone = strings.TrimSpace(*req.EmergencyPhone)
	}

	lt, err := balance.ParseLeaveType(l.LeaveType)
	if err != nil {
		return LeaveResponse{}, err
	}
	if _, err := s.ledger.WithTx(tx).Available(ctx, l.UserID, lt, l.Days); err != nil {
		return LeaveResponse{}, err
	}
	if err := s.checkOverlap(ctx, qtx, l.UserID, l.StartDate, l.EndDate, &l.ID); err != nil {
		return LeaveResponse{}, err
	}

	ftx := s.files.WithTx(tx)
	if len(removeIDs) > 0 {
		if err := ftx.Detach(ctx, l.ID, removeIDs); err != nil {
			s.logger.Warn("update leave detach files failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
	}
	if len(attachIDs) > 0 {
		if err := ftx.Attach(ctx, l.ID, attachIDs); err != nil {
			s.logger.Warn("update leave attach files failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	updated, err := qtx.FindByID(ctx, l.ID)
	if err != nil {
		s.logger.Error("update leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.logger.Info("update leave success",
		zap.String("leave_id", id),
		zap.Int("days", l.Days),
	)
	return mapToResponse(*updated), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	return s.review(ctx, actor, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (LeaveResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.review(ctx, actor, id, StatusRejected, reason)
}

func (s *service) review(ctx context.Context, actor domain.Actor, id, target, reason string) (LeaveResponse, error) {
	s.logger.Debug("review leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
		zap.String("target_status", target),
	)

	if !actor.CanReview() {
		return LeaveResponse{}, leaveerrors.ErrReviewForbidden
	}
	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("review leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := s.lock(ctx, qtx, leaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("review leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", target),
		)
		return LeaveResponse{}, leaveerrors.InvalidTransition(l.Status, target)
	}

	now := s.now().UTC()
	l.Status = target
	l.ActionedBy = &actorID
	l.ActionedAt = &now

	var (
		notifType string
		title     string
		msg       string
	)
	switch target {
	case StatusApproved:
		lt, err := balance.ParseLeaveType(l.LeaveType)
		if err != nil {
			return LeaveResponse{}, err
		}
		if _, err := s.ledger.WithTx(tx).Debit(ctx, l.UserID, lt, l.Days); err != nil {
			return LeaveResponse{}, err
		}
		l.RejectionReason = nil
		notifType = notification.TypeLeaveApproved
		title = "Leave request approved"
		msg = fmt.Sprintf("Your %s request from %s to %s has been approved.",
			l.LeaveType, l.StartDate.Format(DateLayout), l.EndDate.Format(DateLayout))
	case StatusRejected:
		l.RejectionReason = &reason
		notifType = notification.TypeLeaveRejected
		title = "Leave request rejected"
		msg = fmt.Sprintf("Your %s request from %s to %s has been rejected: %s",
			l.LeaveType, l.StartDate.Format(DateLayout), l.EndDate.Format(DateLayout), reason)
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("review leave persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if err := s.notify(ctx, tx, l, actorID, []uuid.UUID{l.UserID}, notifType, title, msg); err != nil {
		return LeaveResponse{}, err
	}
	reviewed, err := qtx.FindByID(ctx, l.ID)
	if err != nil {
		s.logger.Error("review leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("review leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.emitter.Invalidate(ctx, l.UserID)

	s.logger.Info("review leave success",
		zap.String("leave_id", id),
		zap.String("status", target),
		zap.String("actioned_by", actorID.String()),
	)
	return mapToResponse(*reviewed), nil
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	s.logger.Debug("cancel leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
	)

	actorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := s.lock(ctx, qtx, leaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	isOwner := owns(actor, l)
	if !isOwner && !actor.IsAdmin() {
		return LeaveResponse{}, leaveerrors.ErrLeaveForbidden
	}
	if l.Status != StatusPending {
		s.logger.Warn("cancel leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.InvalidTransition(l.Status, StatusCancelled)
	}

	now := s.now().UTC()
	l.Status = StatusCancelled
	l.ActionedBy = &actorID
	l.ActionedAt = &now
	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("cancel leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	var notified []uuid.UUID
	if !isOwner {
		notified = []uuid.UUID{l.UserID}
		msg := fmt.Sprintf("Your %s request from %s to %s was cancelled by an administrator.",
			l.LeaveType, l.StartDate.Format(DateLayout), l.EndDate.Format(DateLayout))
		if err := s.notify(ctx, tx, l, actorID, notified, notification.TypeLeaveCancelled, "Leave request cancelled", msg); err != nil {
			return LeaveResponse{}, err
		}
	}
	cancelled, err := qtx.FindByID(ctx, l.ID)
	if err != nil {
		s.logger.Error("cancel leave reload failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	s.emitter.Invalidate(ctx, notified...)

	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	return mapToResponse(*cancelled), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	s.logger.Debug("delete leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.UserID),
	)

	leaveID, err := uuid.Parse(id)
	if err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := s.lock(ctx, qtx, leaveID)
	if err != nil {
		return err
	}
	if !owns(actor, l) && !actor.IsAdmin() {
		return leaveerrors.ErrLeaveForbidden
	}

	if l.Status == StatusApproved {
		lt, err := balance.ParseLeaveType(l.LeaveType)
		if err != nil {
			return err
		}
		if _, err := s.ledger.WithTx(tx).Credit(ctx, l.UserID, lt, l.Days); err != nil {
			return err
		}
	}

	detached, err := s.files.WithTx(tx).DetachByLeave(ctx, l.ID)
	if err != nil {
		s.logger.Error("delete leave detach files failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if err := s.emitter.WithTx(tx).UnlinkLeave(ctx, l.ID); err != nil {
		return err
	}
	rows, err := qtx.Delete(ctx, l.ID)
	if err != nil {
		s.logger.Error("delete leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return err
	}
	if rows == 0 {
		return leaveerrors.ErrLeaveNotFound
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave commit failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return err
	}

	// Leftovers are reclaimed by the orphan sweeper.
	if len(detached) > 0 {
		if err := s.purger.PurgeOrphans(ctx, detached); err != nil {
			s.logger.Warn("delete leave purge files failed",
				zap.String("leave_id", id),
				zap.Int("files", len(detached)),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("delete leave success",
		zap.String("leave_id", id),
		zap.String("status", l.Status),
		zap.Int("files_detached", len(detached)),
	)
	return nil
}

func (s *service) lock(ctx context.Context, qtx Repository, id uuid.UUID) (*Leave, error) {
	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("lock leave failed", zap.String("leave_id", id.String()), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (s *service) checkOverlap(ctx context.Context, qtx Repository, userID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	existing, err := qtx.FindOverlapping(ctx, userID, start, end, excludeID)
	if err != nil {
		s.logger.Error("leave overlap check failed", zap.Error(err))
		return err
	}
	if existing == nil {
		return nil
	}
	s.logger.Warn("leave overlap detected",
		zap.String("user_id", userID.String()),
		zap.String("conflicting_leave_id", existing.ID.String()),
	)
	return leaveerrors.Overlap(
		existing.ID.String(),
		existing.StartDate.Format(DateLayout),
		existing.EndDate.Format(DateLayout),
		existing.Status,
	)
}

func (s *service) notify(ctx context.Context, tx *sql.Tx, l *Leave, actorID uuid.UUID, recipients []uuid.UUID, typ, title, msg string) error {
	if len(recipients) == 0 {
		return nil
	}
	etx := s.emitter.WithTx(tx)
	leaveID := l.ID
	for _, rid := range recipients {
		_, err := etx.Emit(ctx, notification.EmitRequest{
			RecipientID:   rid,
			TriggeredByID: &actorID,
			LeaveID:       &leaveID,
			Type:          typ,
			Title:         title,
			Message:       msg,
			Metadata: map[string]any{
				"leave_type": l.LeaveType,
				"start_date": l.StartDate.Format(DateLayout),
				"end_date":   l.EndDate.Format(DateLayout),
				"days":       l.Days,
				"status":     l.Status,
			},
		})
		if err != nil {
			s.logger.Error("leave notification failed",
				zap.String("leave_id", l.ID.String()),
				zap.String("type", typ),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

// parseRange validates a YYYY-MM-DD range. checkPast rejects a start date
// before today.
func (s *service) parseRange(start, end string, checkPast bool) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	if checkPast && startDate.Before(s.today()) {
		return time.Time{}, time.Time{}, leaveerrors.ErrStartDateInPast
	}
	return startDate, endDate, nil
}

func (s *service) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func owns(actor domain.Actor, l *Leave) bool {
	return l.UserID.String() == actor.UserID
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseFileIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, leaveerrors.ErrInvalidFileID
		}
		ids = append(ids, id)
	}
	return ids, nil
}
