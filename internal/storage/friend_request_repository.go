package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// FriendRequestRepository defines the interface for friend request data
// operations. Create and UpdateStatusIfPending carry the atomicity
// guarantees of the relationship store: the duplicate check is backed by a
// partial unique index and the transition is a status-guarded UPDATE, so
// concurrent callers cannot double-create or double-process a record.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	GetByID(ctx context.Context, requestID uint) (*models.FriendRequest, error)
	FindActiveByPair(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error)
	UpdateStatusIfPending(ctx context.Context, requestID uint, status models.FriendRequestStatus) (bool, error)
	ListByReceiverAndStatus(ctx context.Context, receiverID uint, status models.FriendRequestStatus, offset, limit int) ([]models.FriendRequest, int64, error)
	ListAcceptedInvolving(ctx context.Context, userID uint, offset, limit int) ([]models.FriendRequest, int64, error)
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

// NewGormFriendRequestRepository creates a GORM-based FriendRequestRepository.
func NewGormFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &gormFriendRequestRepository{db: db}
}

// Create inserts a new request. A concurrent insert for the same active
// (sender, receiver) pair loses against the partial unique index and comes
// back as gorm.ErrDuplicatedKey; the service maps that to its duplicate
// request error.
func (r *gormFriendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	return withRetry(ctx, func() error {
		return r.db.WithContext(ctx).Create(request).Error
	})
}

// GetByID retrieves a friend request by its ID.
func (r *gormFriendRequestRepository) GetByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).First(&request, requestID).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindActiveByPair looks up the non-rejected record for an ordered
// (sender, receiver) pair, if any. Direction matters: a request from B to A
// does not block a request from A to B.
func (r *gormFriendRequestRepository) FindActiveByPair(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := withRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
			Where("status <> ?", models.FriendRequestStatusRejected).
			First(&request).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no active request is not an error here
		}
		return nil, err
	}
	return &request, nil
}

// UpdateStatusIfPending transitions the record out of pending. The status
// guard in the WHERE clause makes the transition atomic: of N concurrent
// attempts exactly one observes rows affected. Sender, receiver and
// created_at are never touched; only status and updated_at change.
func (r *gormFriendRequestRepository) UpdateStatusIfPending(ctx context.Context, requestID uint, status models.FriendRequestStatus) (bool, error) {
	var affected int64
	err := withRetry(ctx, func() error {
		tx := r.db.WithContext(ctx).
			Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", requestID, models.FriendRequestStatusPending).
			Update("status", status)
		affected = tx.RowsAffected
		return tx.Error
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByReceiverAndStatus returns a page of requests addressed to the
// receiver in the given status, oldest first, with the total count.
func (r *gormFriendRequestRepository) ListByReceiverAndStatus(ctx context.Context, receiverID uint, status models.FriendRequestStatus, offset, limit int) ([]models.FriendRequest, int64, error) {
	var requests []models.FriendRequest
	var total int64

	base := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("receiver_id = ? AND status = ?", receiverID, status)

	err := withRetry(ctx, func() error {
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}
		return base.Session(&gorm.Session{}).
			Order("created_at ASC, id ASC").
			Offset(offset).Limit(limit).
			Find(&requests).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListAcceptedInvolving returns a page of accepted requests where the user
// is on either side. Friendship is symmetric, so the friends view reads
// both directions and the caller projects the counterpart.
func (r *gormFriendRequestRepository) ListAcceptedInvolving(ctx context.Context, userID uint, offset, limit int) ([]models.FriendRequest, int64, error) {
	var requests []models.FriendRequest
	var total int64

	base := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?",
			userID, userID, models.FriendRequestStatusAccepted)

	err := withRetry(ctx, func() error {
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			return err
		}
		return base.Session(&gorm.Session{}).
			Order("created_at ASC, id ASC").
			Offset(offset).Limit(limit).
			Find(&requests).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
