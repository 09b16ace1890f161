package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-muonsel/internal/domain"
	"github.com/ahrav/go-muonsel/internal/ports"
	"github.com/ahrav/go-muonsel/internal/testutils"
)

// batchInputs returns n muons whose expected outcome cycles through pass,
// fail_iso and fail_kinematics.
func batchInputs(n int) ([]domain.Input, []domain.Outcome) {
	inputs := make([]domain.Input, n)
	want := make([]domain.Outcome, n)
	for i := range n {
		switch i % 3 {
		case 0:
			inputs[i] = domain.Input{Muon: testutils.GoodMuon()}
			want[i] = domain.OutcomePass
		case 1:
			recs := testutils.GoodMuonRecordsWith(map[string]any{"TrkIso": 20.0})
			inputs[i] = domain.Input{Muon: testutils.MuonWith(50, 1.0, recs)}
			want[i] = domain.OutcomeFailIso
		default:
			recs := testutils.GoodMuonRecordsWith(map[string]any{"TrkIso": 0.1})
			inputs[i] = domain.Input{Muon: testutils.MuonWith(5, 1.0, recs)}
			want[i] = domain.OutcomeFailKinematics
		}
	}
	return inputs, want
}

func TestEvaluateBatch_PreservesOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil), WithConcurrency(workers))
			inputs, want := batchInputs(100)

			got, err := e.EvaluateBatch(context.Background(), inputs)
			require.NoError(t, err)
			require.Len(t, got, len(want))

			for i := range want {
				assert.Equal(t, want[i], got[i].Code, "muon %d", i)
			}
		})
	}
}

func TestEvaluateBatch_Empty(t *testing.T) {
	e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil))

	got, err := e.EvaluateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateBatch_PropagatesLookupError(t *testing.T) {
	e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil), WithConcurrency(2))

	inputs, _ := batchInputs(10)
	broken := testutils.GoodMuonRecordsWith(map[string]any{"TrkIso": nil})
	inputs[7] = domain.Input{Muon: testutils.MuonWith(50, 1.0, broken)}

	got, err := e.EvaluateBatch(context.Background(), inputs)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "muon 7")

	var lookupErr *ports.AttributeLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "TrkIso", lookupErr.Record)
}

func TestEvaluateBatch_ZeroPtMuonDoesNotAbort(t *testing.T) {
	e := newTestEngine(t, testSelector(t, IDHighPt, IsoTracker, 0.15, nil), WithConcurrency(2))

	inputs := []domain.Input{
		{Muon: testutils.MuonWith(0, 1.0, testutils.GoodMuonRecords())},
		{Muon: testutils.MuonWith(250, 1.0, testutils.GoodMuonRecordsWith(map[string]any{"ptCocktail": 0.0}))},
		{Muon: testutils.GoodMuon()},
	}

	got, err := e.EvaluateBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.False(t, got[0].Kinematics)
	assert.False(t, got[0].Isolation)
	assert.Equal(t, domain.OutcomeFailMultiple, got[0].Code)

	assert.False(t, got[1].Identification)
	assert.Equal(t, domain.OutcomeFailID, got[1].Code)
}

func TestEvaluateBatch_CancelledContext(t *testing.T) {
	e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs, _ := batchInputs(10)
	_, err := e.EvaluateBatch(ctx, inputs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil))
	inputs, _ := batchInputs(9)

	decisions, err := e.EvaluateBatch(context.Background(), inputs)
	require.NoError(t, err)

	s := Summarize(decisions)
	assert.Equal(t, 9, s.Total)
	assert.Equal(t, map[domain.Outcome]int{
		domain.OutcomePass:           3,
		domain.OutcomeFailIso:        3,
		domain.OutcomeFailKinematics: 3,
	}, s.Counts)

	var incremental Summary
	for _, d := range decisions {
		incremental.Add(d)
	}
	assert.Equal(t, s, incremental)
}

func TestEvaluateBatch_RecordsBatchMetrics(t *testing.T) {
	metrics := testutils.NewMockMetricsCollector()
	e := newTestEngine(t, testSelector(t, IDTight, IsoTracker, 0.15, nil),
		WithMetrics(metrics), WithConcurrency(4))
	inputs, _ := batchInputs(6)

	_, err := e.EvaluateBatch(context.Background(), inputs)
	require.NoError(t, err)

	labels := map[string]string{"identification": "TightID", "isolation": "Tracker"}
	assert.Equal(t, 4.0, metrics.Gauge(MetricBatchWorkers, nil))
	assert.Equal(t, []float64{2.0 / 6.0}, metrics.Observations(MetricBatchPassFraction, labels))
	assert.Equal(t, 6, metrics.Latencies(OperationSelect, labels))
}
