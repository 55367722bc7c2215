package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"social-go/internal/config"
	"social-go/internal/kafka"
	"social-go/internal/models"
	"social-go/internal/pagination"
	"social-go/internal/storage"

	"gorm.io/gorm"
)

var (
	ErrSelfRequest            = errors.New("cannot send a friend request to yourself")
	ErrDuplicateActiveRequest = errors.New("a friend request already exists, or you are already friends")
	ErrReceiverNotFound       = errors.New("cannot send a request to this user as it does not exist")
	ErrRequestNotFound        = errors.New("friend request not found")
	ErrNotRequestReceiver     = errors.New("you are not the receiver of this friend request")
	ErrAlreadyProcessed       = errors.New("this request has already been processed")
	ErrInvalidStatusValue     = errors.New("invalid status, only 'accepted' or 'rejected' are allowed")
	ErrRateLimitExceeded      = errors.New("too many friend requests, please try again later")
)

// FriendRequestService defines the friend request lifecycle operations.
type FriendRequestService interface {
	// SendRequest creates a pending request from sender to receiver. The
	// attempt is counted against the sender's rate limit before anything
	// else happens, whether or not it later validates.
	SendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error)
	// UpdateRequestStatus transitions a pending request to accepted or
	// rejected. Only the request's receiver may do this, and only once.
	UpdateRequestStatus(ctx context.Context, actorID, requestID uint, status models.FriendRequestStatus) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID uint, page pagination.Params) (*pagination.Page[models.FriendEntry], error)
	ListPendingRequests(ctx context.Context, userID uint, page pagination.Params) (*pagination.Page[models.FriendEntry], error)
}

type friendRequestService struct {
	userRepo    storage.UserRepository
	friendRepo  storage.FriendRequestRepository
	limiter     RateLimiter
	producer    kafka.MessageProducer
	kafkaConfig config.KafkaConfig
}

// NewFriendRequestService creates a new FriendRequestService instance.
// The producer may be nil, in which case no events are published.
func NewFriendRequestService(
	userRepo storage.UserRepository,
	friendRepo storage.FriendRequestRepository,
	limiter RateLimiter,
	producer kafka.MessageProducer,
	cfg config.KafkaConfig,
) FriendRequestService {
	return &friendRequestService{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		limiter:     limiter,
		producer:    producer,
		kafkaConfig: cfg,
	}
}

// SendRequest validates and persists a new friend request.
func (s *friendRequestService) SendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	// The throttle gate comes first: every authenticated attempt that
	// reaches this point counts toward the sender's quota, including ones
	// that fail validation below.
	allowed, err := s.limiter.Allow(ctx, strconv.FormatUint(uint64(senderID), 10))
	if err != nil {
		return nil, fmt.Errorf("failed to consult rate limiter for sender %d: %w", senderID, err)
	}
	if !allowed {
		return nil, ErrRateLimitExceeded
	}

	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	exists, err := s.userRepo.Exists(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check receiver %d: %w", receiverID, err)
	}
	if !exists {
		return nil, ErrReceiverNotFound
	}

	// Friendly pre-check for the common case; the partial unique index is
	// what actually decides races between concurrent creates.
	existing, err := s.friendRepo.FindActiveByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request from %d to %d: %w", senderID, receiverID, err)
	}
	if existing != nil {
		return nil, ErrDuplicateActiveRequest
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateActiveRequest
		}
		return nil, fmt.Errorf("failed to create friend request from %d to %d: %w", senderID, receiverID, err)
	}

	s.publishEvent(ctx, FriendEventCreated, request)
	return request, nil
}

// UpdateRequestStatus resolves an accept/reject action against the request.
func (s *friendRequestService) UpdateRequestStatus(ctx context.Context, actorID, requestID uint, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	if status != models.FriendRequestStatusAccepted && status != models.FriendRequestStatusRejected {
		return nil, ErrInvalidStatusValue
	}

	request, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to retrieve friend request %d: %w", requestID, err)
	}

	if request.ReceiverID != actorID {
		return nil, ErrNotRequestReceiver
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	// The status-guarded update decides concurrent transition attempts:
	// exactly one caller sees the row change.
	transitioned, err := s.friendRepo.UpdateStatusIfPending(ctx, requestID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update friend request %d status: %w", requestID, err)
	}
	if !transitioned {
		return nil, ErrAlreadyProcessed
	}

	request.Status = status
	request.UpdatedAt = time.Now()

	switch status {
	case models.FriendRequestStatusAccepted:
		s.publishEvent(ctx, FriendEventAccepted, request)
	case models.FriendRequestStatusRejected:
		s.publishEvent(ctx, FriendEventRejected, request)
	}
	return request, nil
}

// ListFriends returns one page of the user's friends. Friendship is
// symmetric: accepted requests in both directions count, and the entry
// shows the counterpart's public profile.
func (s *friendRequestService) ListFriends(ctx context.Context, userID uint, page pagination.Params) (*pagination.Page[models.FriendEntry], error) {
	requests, total, err := s.friendRepo.ListAcceptedInvolving(ctx, userID, page.Offset(), page.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to list friends for user %d: %w", userID, err)
	}

	entries, err := s.projectCounterparts(ctx, requests, userID)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(entries, total, page), nil
}

// ListPendingRequests returns one page of requests awaiting the user's
// verdict, projected to the senders' public profiles.
func (s *friendRequestService) ListPendingRequests(ctx context.Context, userID uint, page pagination.Params) (*pagination.Page[models.FriendEntry], error) {
	requests, total, err := s.friendRepo.ListByReceiverAndStatus(ctx, userID, models.FriendRequestStatusPending, page.Offset(), page.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests for user %d: %w", userID, err)
	}

	entries, err := s.projectCounterparts(ctx, requests, userID)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(entries, total, page), nil
}

// projectCounterparts resolves the other party of each request relative to
// userID and joins in their public profile fields.
func (s *friendRequestService) projectCounterparts(ctx context.Context, requests []models.FriendRequest, userID uint) ([]models.FriendEntry, error) {
	counterpartIDs := make([]uint, 0, len(requests))
	for _, req := range requests {
		counterpartIDs = append(counterpartIDs, counterpartOf(&req, userID))
	}

	infos, err := s.userRepo.GetPublicInfoByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load counterpart profiles: %w", err)
	}

	entries := make([]models.FriendEntry, 0, len(requests))
	for _, req := range requests {
		counterpartID := counterpartOf(&req, userID)
		info, ok := infos[counterpartID]
		if !ok {
			// Counterpart account removed out-of-band; skip the row.
			log.Printf("No profile for user %d referenced by friend request %d", counterpartID, req.ID)
			continue
		}
		entries = append(entries, models.FriendEntry{
			RequestID: req.ID,
			UserID:    info.ID,
			Email:     info.Email,
			FirstName: info.FirstName,
			LastName:  info.LastName,
		})
	}
	return entries, nil
}

func counterpartOf(req *models.FriendRequest, userID uint) uint {
	if req.SenderID == userID {
		return req.ReceiverID
	}
	return req.SenderID
}

// publishEvent emits a friend event for the notify server. Publishing is
// best-effort: the store is already the source of truth, so a broker
// outage must not fail the API operation.
func (s *friendRequestService) publishEvent(ctx context.Context, eventType string, request *models.FriendRequest) {
	if s.producer == nil {
		return
	}

	event := FriendEvent{
		Type:       eventType,
		RequestID:  request.ID,
		SenderID:   request.SenderID,
		ReceiverID: request.ReceiverID,
		Timestamp:  time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling friend event for request %d: %v", request.ID, err)
		return
	}

	key := []byte(fmt.Sprintf("%d-%d", request.SenderID, request.ReceiverID))
	if err := s.producer.SendMessage(ctx, s.kafkaConfig.FriendEventTopic, key, payload); err != nil {
		log.Printf("Error publishing %s event for request %d: %v", eventType, request.ID, err)
	}
}
