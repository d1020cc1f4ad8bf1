package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/ciw-intake/repositories"
)

// MockTransactionManager is a mock implementation of TransactionManager.
// InTransaction runs fn against Tx unless the expectation returns an error.
type MockTransactionManager struct {
	mock.Mock
	Tx *MockTransaction
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if err := fn(ctx, m.Tx); err != nil {
		m.Tx.rolledback = true
		return err
	}
	m.Tx.committed = true
	return nil
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
	committed  bool
	rolledback bool
}

func (m *MockTransaction) Commit() error {
	args := m.Called()
	m.committed = true
	return args.Error(0)
}

func (m *MockTransaction) Rollback() error {
	args := m.Called()
	m.rolledback = true
	return args.Error(0)
}

func (m *MockTransaction) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

func TestWithTransaction_Success(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	mockTxMgr.On("InTransaction", ctx).Return(nil)

	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, mockTxMgr.Tx.committed)
	assert.False(t, mockTxMgr.Tx.rolledback)
	mockTxMgr.AssertExpectations(t)
}

func TestWithTransaction_ErrorInFunction(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	expectedErr := errors.New("operation failed")
	mockTxMgr.On("InTransaction", ctx).Return(nil)

	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		return expectedErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.False(t, mockTxMgr.Tx.committed)
	assert.True(t, mockTxMgr.Tx.rolledback)
}

func TestWithTransaction_BeginError(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	mockTxMgr.On("InTransaction", ctx).Return(errors.New("failed to begin transaction"))

	called := false
	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
}

func TestWithTransactionResult_Success(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	mockTxMgr.On("InTransaction", ctx).Return(nil)

	result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (int64, error) {
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), result)
	assert.True(t, mockTxMgr.Tx.committed)
}

func TestWithTransactionResult_ErrorReturnsZero(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	mockTxMgr.On("InTransaction", ctx).Return(nil)

	result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (int64, error) {
		return 42, ErrPersonRejected
	})

	assert.Equal(t, int64(0), result)
	assert.ErrorIs(t, err, ErrPersonRejected)
	assert.Equal(t, ErrorTypeInternal, GetErrorType(err))
	assert.True(t, mockTxMgr.Tx.rolledback)
}

func TestWithTransactionResult_CommitError(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := &MockTransactionManager{Tx: new(MockTransaction)}
	mockTxMgr.On("InTransaction", ctx).Return(errors.New("failed to commit transaction: conn closed"))

	result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (string, error) {
		return "never", nil
	})

	assert.Empty(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}
