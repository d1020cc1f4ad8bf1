package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/ciw-intake/models"
	"go.uber.org/zap"
)

// MockProcessor is a mock implementation of FileProcessor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, runID uuid.UUID, file models.FileRef) (*Outcome, error) {
	args := m.Called(ctx, runID, file)
	if out := args.Get(0); out != nil {
		return out.(*Outcome), args.Error(1)
	}
	return nil, args.Error(1)
}

func writeInbox(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("Version\t2.1\n"), 0o644))
	}
	return dir
}

func fileWithID(id string) interface{} {
	return mock.MatchedBy(func(f models.FileRef) bool { return f.ID == id })
}

func TestDiscover(t *testing.T) {
	dir := writeInbox(t,
		"b.ciw",
		"a.CIW",
		"notes.txt",
		"jane.doe@gsa.gov/smith.ciw",
		"jane.doe@gsa.gov/archive/old.ciw",
	)

	files, err := Discover(dir)
	require.NoError(t, err)

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"a.CIW", "b.ciw", "jane.doe@gsa.gov/smith.ciw"}, ids)

	assert.Empty(t, files[0].Submitter)
	assert.Equal(t, "jane.doe@gsa.gov", files[2].Submitter)
	assert.Equal(t, "smith.ciw", files[2].Name)
	assert.Equal(t, filepath.Join(dir, "jane.doe@gsa.gov", "smith.ciw"), files[2].Path)
}

func TestDiscover_MissingInbox(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunner_Run(t *testing.T) {
	dir := writeInbox(t, "a.ciw", "b.ciw", "c.ciw", "d.ciw")

	ledger := new(MockLedger)
	ledger.On("IsProcessed", mock.Anything, "a.ciw").Return(true, nil)
	ledger.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)

	processor := new(MockProcessor)
	processor.On("Process", mock.Anything, mock.Anything, fileWithID("b.ciw")).
		Return(&Outcome{Code: models.ErrorCodeSuccess}, nil)
	processor.On("Process", mock.Anything, mock.Anything, fileWithID("c.ciw")).
		Return(&Outcome{Code: models.ErrorCodeFailedValidation}, nil)
	processor.On("Process", mock.Anything, mock.Anything, fileWithID("d.ciw")).
		Return(&Outcome{Code: models.ErrorCodeSuccess}, nil)

	runner := NewRunner(processor, ledger, dir, 3, zap.NewNop())
	summary, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, summary.RunID)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 2, summary.Counts[models.ErrorCodeSuccess])
	assert.Equal(t, 1, summary.Counts[models.ErrorCodeFailedValidation])
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, fileWithID("a.ciw"))

	// every file in one run shares the run ID
	runIDs := map[uuid.UUID]bool{}
	for _, c := range processor.Calls {
		runIDs[c.Arguments.Get(1).(uuid.UUID)] = true
	}
	assert.Len(t, runIDs, 1)
	assert.True(t, runIDs[summary.RunID])
}

func TestRunner_Run_AbortsOnProcessorError(t *testing.T) {
	dir := writeInbox(t, "a.ciw")

	ledger := new(MockLedger)
	ledger.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)

	processor := new(MockProcessor)
	processor.On("Process", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("failed to mark file a.ciw processed"))

	runner := NewRunner(processor, ledger, dir, 1, zap.NewNop())
	summary, err := runner.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.ciw")
	assert.Equal(t, 0, summary.Total())
}

func TestRunner_Run_AbortsOnLedgerError(t *testing.T) {
	dir := writeInbox(t, "a.ciw")

	ledger := new(MockLedger)
	ledger.On("IsProcessed", mock.Anything, "a.ciw").Return(false, errors.New("connection refused"))

	processor := new(MockProcessor)

	runner := NewRunner(processor, ledger, dir, 0, zap.NewNop())
	_, err := runner.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check ledger for a.ciw")
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_Run_EmptyInbox(t *testing.T) {
	runner := NewRunner(new(MockProcessor), new(MockLedger), t.TempDir(), 2, zap.NewNop())

	summary, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total())
	assert.Equal(t, 0, summary.Skipped)
}
