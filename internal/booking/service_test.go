package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// MockPerformanceStore is a mock implementation of PerformanceStore.
type MockPerformanceStore struct {
	mock.Mock
}

func (m *MockPerformanceStore) GetWithHall(ctx context.Context, id uint64) (*model.Performance, *model.Hall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Performance), args.Get(1).(*model.Hall), args.Error(2)
}

// MockReservationStore is a mock implementation of ReservationStore.
type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) CreateWithTickets(ctx context.Context, userID uint64, tickets []model.Ticket) (*model.Reservation, error) {
	args := m.Called(ctx, userID, tickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ReservationConfirmed(ctx context.Context, res *model.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func tenByTen(id uint64) (*model.Performance, *model.Hall) {
	return &model.Performance{ID: id, PlayID: 1, HallID: 1, ShowTime: time.Now()},
		&model.Hall{ID: 1, Name: "Main Stage", Rows: 10, SeatsPerRow: 10}
}

func TestBook_Success(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	notifier := new(MockNotifier)
	svc := NewService(perfs, store, notifier)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil).Once()

	committed := &model.Reservation{
		ID:        42,
		UserID:    3,
		CreatedAt: time.Now(),
		Tickets: []model.Ticket{
			{ID: 1, PerformanceID: 7, Row: 1, Seat: 1, ReservationID: 42},
			{ID: 2, PerformanceID: 7, Row: 1, Seat: 2, ReservationID: 42},
		},
	}
	store.On("CreateWithTickets", ctx, uint64(3), []model.Ticket{
		{PerformanceID: 7, Row: 1, Seat: 1},
		{PerformanceID: 7, Row: 1, Seat: 2},
	}).Return(committed, nil).Once()
	notifier.On("ReservationConfirmed", ctx, committed).Return(nil).Once()

	res, err := svc.Book(ctx, 3, []SeatRequest{
		{PerformanceID: 7, Row: 1, Seat: 1},
		{PerformanceID: 7, Row: 1, Seat: 2},
	})

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, uint64(42), res.ID)
	assert.Len(t, res.Tickets, 2)
	perfs.AssertExpectations(t)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
	// the performance is resolved once even though it appears twice
	perfs.AssertNumberOfCalls(t, "GetWithHall", 1)
}

func TestBook_EmptyRequest(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	res, err := svc.Book(context.Background(), 3, nil)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyBooking)
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_RowOutOfRange_NothingWritten(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil)

	res, err := svc.Book(ctx, 3, []SeatRequest{{PerformanceID: 7, Row: 11, Seat: 1}})

	assert.Nil(t, res)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, reqErr.Index)
	assert.Contains(t, reqErr.Fields, "row")
	assert.NotContains(t, reqErr.Fields, "seat")
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_OneBadItemRejectsWholeBatch(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	p1, h1 := tenByTen(1)
	perfs.On("GetWithHall", ctx, uint64(1)).Return(p1, h1, nil)
	p2 := &model.Performance{ID: 2, PlayID: 1, HallID: 2}
	h2 := &model.Hall{ID: 2, Name: "Studio", Rows: 10, SeatsPerRow: 10}
	perfs.On("GetWithHall", ctx, uint64(2)).Return(p2, h2, nil)

	res, err := svc.Book(ctx, 3, []SeatRequest{
		{PerformanceID: 1, Row: 1, Seat: 1},  // valid
		{PerformanceID: 2, Row: 99, Seat: 1}, // out of range
	})

	assert.Nil(t, res)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 1, reqErr.Index)
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_DuplicateSeatInSameBatch(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil)

	res, err := svc.Book(ctx, 3, []SeatRequest{
		{PerformanceID: 7, Row: 1, Seat: 1},
		{PerformanceID: 7, Row: 1, Seat: 1},
	})

	assert.Nil(t, res)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 1, reqErr.Index)
	assert.Contains(t, reqErr.Fields, "seat")
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_UnknownPerformance(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	perfs.On("GetWithHall", ctx, uint64(99)).Return(nil, nil, repository.ErrPerformanceNotFound)

	res, err := svc.Book(ctx, 3, []SeatRequest{{PerformanceID: 99, Row: 1, Seat: 1}})

	assert.Nil(t, res)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Fields, "performance")
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_StoreFailureIsNotAValidationError(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	dbDown := errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	perfs.On("GetWithHall", ctx, uint64(7)).Return(nil, nil, dbDown)

	res, err := svc.Book(ctx, 3, []SeatRequest{{PerformanceID: 7, Row: 1, Seat: 1}})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, dbDown)
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr), "store failure must not surface as a request validation error")
	store.AssertNotCalled(t, "CreateWithTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_SeatTakenByConcurrentRequest(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	notifier := new(MockNotifier)
	svc := NewService(perfs, store, notifier)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil)

	taken := &repository.SeatTakenError{PerformanceID: 7, Row: 1, Seat: 1}
	store.On("CreateWithTickets", ctx, uint64(4), mock.Anything).Return(nil, taken).Once()

	res, err := svc.Book(ctx, 4, []SeatRequest{{PerformanceID: 7, Row: 1, Seat: 1}})

	assert.Nil(t, res)
	var st *repository.SeatTakenError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, uint64(7), st.PerformanceID)
	assert.Equal(t, uint32(1), st.Row)
	assert.Equal(t, uint32(1), st.Seat)
	notifier.AssertNotCalled(t, "ReservationConfirmed", mock.Anything, mock.Anything)
}

func TestBook_NotifyFailureDoesNotFailBooking(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	notifier := new(MockNotifier)
	svc := NewService(perfs, store, notifier)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil)

	committed := &model.Reservation{ID: 5, UserID: 3, Tickets: []model.Ticket{{ID: 1, PerformanceID: 7, Row: 1, Seat: 1, ReservationID: 5}}}
	store.On("CreateWithTickets", ctx, uint64(3), mock.Anything).Return(committed, nil).Once()
	notifier.On("ReservationConfirmed", ctx, committed).Return(errors.New("broker unreachable")).Once()

	res, err := svc.Book(ctx, 3, []SeatRequest{{PerformanceID: 7, Row: 1, Seat: 1}})

	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.ID)
	notifier.AssertNumberOfCalls(t, "ReservationConfirmed", 1)
}

func TestBook_NilNotifierIsAllowed(t *testing.T) {
	perfs := new(MockPerformanceStore)
	store := new(MockReservationStore)
	svc := NewService(perfs, store, nil)

	ctx := context.Background()
	perf, hall := tenByTen(7)
	perfs.On("GetWithHall", ctx, uint64(7)).Return(perf, hall, nil)
	committed := &model.Reservation{ID: 6, UserID: 3}
	store.On("CreateWithTickets", ctx, uint64(3), mock.Anything).Return(committed, nil).Once()

	res, err := svc.Book(ctx, 3, []SeatRequest{{PerformanceID: 7, Row: 2, Seat: 2}})

	require.NoError(t, err)
	assert.Equal(t, uint64(6), res.ID)
}
