package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"social-go/internal/config"
	"social-go/internal/models"
	"social-go/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory storage.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Exists(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, excludeUserID uint, offset, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(query)
	var matches []models.User
	for _, u := range r.users {
		if u.ID == excludeUserID {
			continue
		}
		haystack := strings.ToLower(u.Email + " " + u.FirstName + " " + u.LastName)
		if strings.Contains(haystack, needle) {
			matches = append(matches, u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

func (r *fakeUserRepo) GetPublicInfoByIDs(ctx context.Context, userIDs []uint) (map[uint]*models.UserPublicInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[uint]*models.UserPublicInfo, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			result[id] = u.PublicInfo()
		}
	}
	return result, nil
}

// fakeFriendRepo is an in-memory storage.FriendRequestRepository. Like the
// real one, it rejects a second active record for the same ordered pair with
// gorm.ErrDuplicatedKey and transitions a request out of pending atomically.
type fakeFriendRepo struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]models.FriendRequest
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{requests: make(map[uint]models.FriendRequest)}
}

func (r *fakeFriendRepo) Create(ctx context.Context, request *models.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.SenderID == request.SenderID &&
			existing.ReceiverID == request.ReceiverID &&
			existing.Status != models.FriendRequestStatusRejected {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	request.ID = r.nextID
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = *request
	return nil
}

func (r *fakeFriendRepo) GetByID(ctx context.Context, requestID uint) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *fakeFriendRepo) FindActiveByPair(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID &&
			req.Status != models.FriendRequestStatusRejected {
			found := req
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeFriendRepo) UpdateStatusIfPending(ctx context.Context, requestID uint, status models.FriendRequestStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok || req.Status != models.FriendRequestStatusPending {
		return false, nil
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	r.requests[requestID] = req
	return true, nil
}

func (r *fakeFriendRepo) ListByReceiverAndStatus(ctx context.Context, receiverID uint, status models.FriendRequestStatus, offset, limit int) ([]models.FriendRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []models.FriendRequest
	for _, req := range r.requests {
		if req.ReceiverID == receiverID && req.Status == status {
			matches = append(matches, req)
		}
	}
	return pageOf(matches, offset, limit)
}

func (r *fakeFriendRepo) ListAcceptedInvolving(ctx context.Context, userID uint, offset, limit int) ([]models.FriendRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []models.FriendRequest
	for _, req := range r.requests {
		if req.Status == models.FriendRequestStatusAccepted &&
			(req.SenderID == userID || req.ReceiverID == userID) {
			matches = append(matches, req)
		}
	}
	return pageOf(matches, offset, limit)
}

func pageOf(matches []models.FriendRequest, offset, limit int) ([]models.FriendRequest, int64, error) {
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	total := int64(len(matches))
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

// fakeLimiter counts attempts per key against a fixed quota. A zero quota
// means unlimited.
type fakeLimiter struct {
	mu     sync.Mutex
	quota  int
	counts map[string]int
}

func newFakeLimiter(quota int) *fakeLimiter {
	return &fakeLimiter{quota: quota, counts: make(map[string]int)}
}

func (l *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	if l.quota <= 0 {
		return true, nil
	}
	return l.counts[key] <= l.quota, nil
}

func (l *fakeLimiter) reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}

// capturingProducer records published messages.
type capturingProducer struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *capturingProducer) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, payload)
	return nil
}

func (p *capturingProducer) Close() {}

func (p *capturingProducer) events(t *testing.T) []FriendEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]FriendEvent, 0, len(p.messages))
	for _, payload := range p.messages {
		var e FriendEvent
		require.NoError(t, json.Unmarshal(payload, &e))
		events = append(events, e)
	}
	return events
}

func testUser(id uint, email string) models.User {
	u := models.User{Email: email, FirstName: "First" + email, LastName: "Last" + email}
	u.ID = id
	return u
}

func newTestService(users []models.User, limiter RateLimiter, producer *capturingProducer) (FriendRequestService, *fakeFriendRepo) {
	userRepo := newFakeUserRepo(users...)
	friendRepo := newFakeFriendRepo()
	if limiter == nil {
		limiter = newFakeLimiter(0)
	}
	kafkaCfg := config.KafkaConfig{FriendEventTopic: "friend-events-test"}
	var svc FriendRequestService
	if producer != nil {
		svc = NewFriendRequestService(userRepo, friendRepo, limiter, producer, kafkaCfg)
	} else {
		svc = NewFriendRequestService(userRepo, friendRepo, limiter, nil, kafkaCfg)
	}
	return svc, friendRepo
}

func defaultUsers() []models.User {
	return []models.User{
		testUser(1, "alice@example.com"),
		testUser(2, "bob@example.com"),
		testUser(3, "carol@example.com"),
		testUser(4, "dave@example.com"),
		testUser(5, "erin@example.com"),
	}
}

func TestSendRequest_Success(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	req, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(1), req.SenderID)
	assert.Equal(t, uint(2), req.ReceiverID)
	assert.Equal(t, models.FriendRequestStatusPending, req.Status)
	assert.NotZero(t, req.ID)
}

func TestSendRequest_ToSelf(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	_, err := svc.SendRequest(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendRequest_ReceiverMissing(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	_, err := svc.SendRequest(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestSendRequest_DuplicatePending(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrDuplicateActiveRequest)
}

func TestSendRequest_DuplicateAfterAccept(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	req, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(context.Background(), 2, req.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	_, err = svc.SendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrDuplicateActiveRequest)
}

func TestSendRequest_ReverseDirectionAllowed(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	_, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	// An opposite-direction request is a distinct pair and goes through.
	_, err = svc.SendRequest(context.Background(), 2, 1)
	assert.NoError(t, err)
}

func TestSendRequest_RetryAfterRejection(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	first, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(context.Background(), 2, first.ID, models.FriendRequestStatusRejected)
	require.NoError(t, err)

	second, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.FriendRequestStatusPending, second.Status)
}

func TestSendRequest_RateLimit(t *testing.T) {
	limiter := newFakeLimiter(3)
	svc, _ := newTestService(defaultUsers(), limiter, nil)
	ctx := context.Background()

	for _, receiverID := range []uint{2, 3, 4} {
		_, err := svc.SendRequest(ctx, 1, receiverID)
		require.NoError(t, err)
	}

	_, err := svc.SendRequest(ctx, 1, 5)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)

	// A new window clears the quota.
	limiter.reset("1")
	_, err = svc.SendRequest(ctx, 1, 5)
	assert.NoError(t, err)
}

func TestSendRequest_FailedValidationCountsAgainstQuota(t *testing.T) {
	limiter := newFakeLimiter(3)
	svc, _ := newTestService(defaultUsers(), limiter, nil)
	ctx := context.Background()

	// Three invalid attempts exhaust the quota before anything is created.
	for i := 0; i < 3; i++ {
		_, err := svc.SendRequest(ctx, 1, 1)
		require.ErrorIs(t, err, ErrSelfRequest)
	}

	_, err := svc.SendRequest(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestSendRequest_RateLimitPerSender(t *testing.T) {
	limiter := newFakeLimiter(3)
	svc, _ := newTestService(defaultUsers(), limiter, nil)
	ctx := context.Background()

	for _, receiverID := range []uint{2, 3, 4} {
		_, err := svc.SendRequest(ctx, 1, receiverID)
		require.NoError(t, err)
	}
	_, err := svc.SendRequest(ctx, 1, 5)
	require.ErrorIs(t, err, ErrRateLimitExceeded)

	// Another sender has an untouched quota.
	_, err = svc.SendRequest(ctx, 2, 3)
	assert.NoError(t, err)
}

func TestSendRequest_ConcurrentSamePair(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendRequest(ctx, 1, 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrDuplicateActiveRequest):
			duplicates++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)
}

func TestUpdateRequestStatus_Errors(t *testing.T) {
	tests := []struct {
		name    string
		actorID uint
		reqID   func(created uint) uint
		status  models.FriendRequestStatus
		wantErr error
	}{
		{
			name:    "invalid status value",
			actorID: 2,
			reqID:   func(created uint) uint { return created },
			status:  "blocked",
			wantErr: ErrInvalidStatusValue,
		},
		{
			name:    "pending is not a valid target",
			actorID: 2,
			reqID:   func(created uint) uint { return created },
			status:  models.FriendRequestStatusPending,
			wantErr: ErrInvalidStatusValue,
		},
		{
			name:    "request not found",
			actorID: 2,
			reqID:   func(created uint) uint { return created + 100 },
			status:  models.FriendRequestStatusAccepted,
			wantErr: ErrRequestNotFound,
		},
		{
			name:    "sender cannot resolve own request",
			actorID: 1,
			reqID:   func(created uint) uint { return created },
			status:  models.FriendRequestStatusAccepted,
			wantErr: ErrNotRequestReceiver,
		},
		{
			name:    "third party cannot resolve",
			actorID: 3,
			reqID:   func(created uint) uint { return created },
			status:  models.FriendRequestStatusRejected,
			wantErr: ErrNotRequestReceiver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(defaultUsers(), nil, nil)
			created, err := svc.SendRequest(context.Background(), 1, 2)
			require.NoError(t, err)

			_, err = svc.UpdateRequestStatus(context.Background(), tt.actorID, tt.reqID(created.ID), tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateRequestStatus_Accept(t *testing.T) {
	svc, repo := newTestService(defaultUsers(), nil, nil)
	created, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateRequestStatus(context.Background(), 2, created.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusAccepted, updated.Status)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestStatusAccepted, stored.Status)
	assert.Equal(t, created.SenderID, stored.SenderID)
	assert.Equal(t, created.ReceiverID, stored.ReceiverID)
}

func TestUpdateRequestStatus_AlreadyProcessed(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	created, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = svc.UpdateRequestStatus(context.Background(), 2, created.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	// Both a repeat and a flip are rejected once the request is terminal.
	_, err = svc.UpdateRequestStatus(context.Background(), 2, created.ID, models.FriendRequestStatusAccepted)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	_, err = svc.UpdateRequestStatus(context.Background(), 2, created.ID, models.FriendRequestStatusRejected)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestUpdateRequestStatus_ConcurrentResolution(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	created, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			status := models.FriendRequestStatusAccepted
			if n%2 == 1 {
				status = models.FriendRequestStatusRejected
			}
			_, err := svc.UpdateRequestStatus(context.Background(), 2, created.ID, status)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one resolution attempt may win")
}

func TestListFriends_SymmetricAndProjected(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	ctx := context.Background()

	// Alice -> Bob accepted, Carol -> Alice accepted, Alice -> Dave pending.
	reqAB, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(ctx, 2, reqAB.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	reqCA, err := svc.SendRequest(ctx, 3, 1)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(ctx, 1, reqCA.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, 1, 4)
	require.NoError(t, err)

	page := pagination.Params{Page: 1, PageSize: 20}

	friendsOfAlice, err := svc.ListFriends(ctx, 1, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), friendsOfAlice.Count)
	counterparts := make([]uint, 0, len(friendsOfAlice.Results))
	for _, entry := range friendsOfAlice.Results {
		counterparts = append(counterparts, entry.UserID)
		assert.NotEmpty(t, entry.Email)
		assert.NotEmpty(t, entry.FirstName)
	}
	assert.ElementsMatch(t, []uint{2, 3}, counterparts)

	// The accepted request shows up from the other side too.
	friendsOfBob, err := svc.ListFriends(ctx, 2, page)
	require.NoError(t, err)
	require.Len(t, friendsOfBob.Results, 1)
	assert.Equal(t, uint(1), friendsOfBob.Results[0].UserID)
}

func TestListPendingRequests(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	ctx := context.Background()

	// Two pending requests to Alice, one resolved, one sent by Alice.
	_, err := svc.SendRequest(ctx, 2, 1)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, 3, 1)
	require.NoError(t, err)
	reqDA, err := svc.SendRequest(ctx, 4, 1)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(ctx, 1, reqDA.ID, models.FriendRequestStatusRejected)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, 1, 5)
	require.NoError(t, err)

	pending, err := svc.ListPendingRequests(ctx, 1, pagination.Params{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Count)

	senders := make([]uint, 0, len(pending.Results))
	for _, entry := range pending.Results {
		senders = append(senders, entry.UserID)
	}
	assert.ElementsMatch(t, []uint{2, 3}, senders)
}

func TestListPendingRequests_Pagination(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	ctx := context.Background()

	for _, senderID := range []uint{2, 3, 4, 5} {
		_, err := svc.SendRequest(ctx, senderID, 1)
		require.NoError(t, err)
	}

	first, err := svc.ListPendingRequests(ctx, 1, pagination.Params{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), first.Count)
	assert.Len(t, first.Results, 3)

	second, err := svc.ListPendingRequests(ctx, 1, pagination.Params{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), second.Count)
	assert.Len(t, second.Results, 1)
}

func TestFriendEventsPublished(t *testing.T) {
	producer := &capturingProducer{}
	svc, _ := newTestService(defaultUsers(), nil, producer)
	ctx := context.Background()

	created, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(ctx, 2, created.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	events := producer.events(t)
	require.Len(t, events, 2)

	assert.Equal(t, FriendEventCreated, events[0].Type)
	assert.Equal(t, created.ID, events[0].RequestID)
	assert.Equal(t, uint(2), events[0].NotifyUserID(), "created events go to the receiver")

	assert.Equal(t, FriendEventAccepted, events[1].Type)
	assert.Equal(t, uint(1), events[1].NotifyUserID(), "resolution events go to the sender")
}

func TestFriendEvents_NilProducerIsNoop(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)

	req, err := svc.SendRequest(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatus(context.Background(), 2, req.ID, models.FriendRequestStatusRejected)
	assert.NoError(t, err)
}

func TestRegisterSendAcceptScenario(t *testing.T) {
	userRepo := newFakeUserRepo()
	friendRepo := newFakeFriendRepo()
	authSvc := NewAuthService(userRepo, testAuthConfig())
	friendSvc := NewFriendRequestService(userRepo, friendRepo, newFakeLimiter(0), nil,
		config.KafkaConfig{FriendEventTopic: "friend-events-test"})
	ctx := context.Background()

	alice, err := authSvc.Register(ctx, "alice@example.com", "Alice", "Smith", "s3cretpass")
	require.NoError(t, err)
	bob, err := authSvc.Register(ctx, "bob@example.com", "Bob", "Jones", "passw0rd42")
	require.NoError(t, err)

	req, err := friendSvc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	pending, err := friendSvc.ListPendingRequests(ctx, bob.ID, pagination.Params{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, pending.Results, 1)
	assert.Equal(t, "alice@example.com", pending.Results[0].Email)

	_, err = friendSvc.UpdateRequestStatus(ctx, bob.ID, req.ID, models.FriendRequestStatusAccepted)
	require.NoError(t, err)

	for userID, friendEmail := range map[uint]string{
		alice.ID: "bob@example.com",
		bob.ID:   "alice@example.com",
	} {
		friends, err := friendSvc.ListFriends(ctx, userID, pagination.Params{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Len(t, friends.Results, 1)
		assert.Equal(t, friendEmail, friends.Results[0].Email)
	}

	pending, err = friendSvc.ListPendingRequests(ctx, bob.ID, pagination.Params{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Empty(t, pending.Results)
}

func TestSendRequest_ManyPairs(t *testing.T) {
	svc, _ := newTestService(defaultUsers(), nil, nil)
	ctx := context.Background()

	pairs := [][2]uint{{1, 2}, {1, 3}, {2, 3}, {4, 5}}
	for _, pair := range pairs {
		_, err := svc.SendRequest(ctx, pair[0], pair[1])
		require.NoError(t, err, fmt.Sprintf("pair %v", pair))
	}

	for _, pair := range pairs {
		_, err := svc.SendRequest(ctx, pair[0], pair[1])
		assert.ErrorIs(t, err, ErrDuplicateActiveRequest)
	}
}
