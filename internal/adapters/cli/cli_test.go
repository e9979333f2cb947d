package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riceops/production-planning/internal/domain/activation"
	"github.com/riceops/production-planning/internal/infrastructure/config"
	"github.com/riceops/production-planning/test/helpers"
)

var (
	activationDay = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	sowingDay     = time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
)

// testApp wires the CLI over a seeded sqlite database: one 10/ha Urea task on a 1.0 ha and a 0.5 ha plot
func testApp(t *testing.T) (*app, *helpers.PlanWorld) {
	t.Helper()
	w := helpers.NewPlanWorld(activationDay)
	urea := w.AddMaterial("Urea", "5", false, "100000")
	w.AddTask("Fertilizing", "First top dressing", sowingDay, helpers.Requirement{Material: urea, PerHa: "10"})
	w.AddCultivation("1.0", true)
	w.AddCultivation("0.5", true)
	w.Commit()

	db := helpers.NewTestDB(t)
	require.NoError(t, w.Seed(context.Background(), db))

	cfg := &config.Config{}
	config.SetDefaults(cfg)

	a, err := newApp(cfg, db, w.Clock)
	require.NoError(t, err)
	return a, w
}

func TestActivatePlans_RunsBothEngines(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	var out bytes.Buffer

	// Act
	err := activatePlans(context.Background(), a, []uuid.UUID{w.PlanID}, &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Expansion: ok")
	assert.Contains(t, out.String(), "Distribution: ok")
	assert.Contains(t, out.String(), "300000.00")
	assert.Contains(t, out.String(), "2024-08-09")
	assert.NotContains(t, out.String(), "queued for retry")
}

func TestActivatePlans_UnknownPlanAbortsWithoutDeadLetter(t *testing.T) {
	// Arrange
	a, _ := testApp(t)
	var out bytes.Buffer

	// Act
	err := activatePlans(context.Background(), a, []uuid.UUID{uuid.New()}, &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Expansion: aborted")
	assert.Contains(t, out.String(), "Distribution: aborted")

	var buf bytes.Buffer
	require.NoError(t, runRetry(context.Background(), a, 10, &buf))
	assert.Contains(t, buf.String(), "Nothing to retry")
}

func TestActivatePlans_PrintsEveryPublishedPlan(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	unknown := uuid.New()
	var out bytes.Buffer

	// Act
	err := activatePlans(context.Background(), a, []uuid.UUID{w.PlanID, unknown}, &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Plan "+w.PlanID.String())
	assert.Contains(t, out.String(), "Plan "+unknown.String())
	assert.Less(t, strings.Index(out.String(), w.PlanID.String()), strings.Index(out.String(), unknown.String()))
}

func TestShowCost_BreaksDownByVariety(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	require.NoError(t, activatePlans(context.Background(), a, []uuid.UUID{w.PlanID}, &bytes.Buffer{}))
	var out bytes.Buffer

	// Act
	err := showCost(context.Background(), a, w.PlanID, "variety", &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "IR64")
	assert.Contains(t, out.String(), "300000.00")
	assert.Contains(t, out.String(), "200000.00")
}

func TestShowCost_UnexpandedPlan(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	var out bytes.Buffer

	// Act
	err := showCost(context.Background(), a, w.PlanID, "material", &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "has no material lines")
}

func TestShowCost_UnknownBreakdown(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	require.NoError(t, activatePlans(context.Background(), a, []uuid.UUID{w.PlanID}, &bytes.Buffer{}))

	// Act
	err := showCost(context.Background(), a, w.PlanID, "stage", &bytes.Buffer{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown breakdown")
}

func TestRetry_ReplaysDueFailure(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	failures := helpers.NewTestRepositories(a.db).Failures
	record := activation.NewFailedActivation(w.PlanID, activation.EngineExpansion, "connection reset", nil,
		w.Clock.Now(), backoffPolicy(a.cfg.Planning.Retry))
	require.NoError(t, failures.Record(context.Background(), record))
	w.Clock.Advance(2 * time.Minute)
	var out bytes.Buffer

	// Act
	err := runRetry(context.Background(), a, 10, &out)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 due: 1 resolved")
}

func TestDistributionReject_RequiresReason(t *testing.T) {
	// Arrange
	root := NewRootCommand()
	root.SetArgs([]string{"distribution", "reject", "--id", uuid.NewString()})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	// Act
	err := root.Execute()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reason")
}

func TestParseID(t *testing.T) {
	_, err := parseID("plan", "")
	assert.EqualError(t, err, "--plan is required")

	_, err = parseID("plan", "not-a-uuid")
	assert.Error(t, err)

	id := uuid.New()
	parsed, err := parseID("plan", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestSweep_ResolvesDueFailure(t *testing.T) {
	// Arrange
	a, w := testApp(t)
	failures := helpers.NewTestRepositories(a.db).Failures
	record := activation.NewFailedActivation(w.PlanID, activation.EngineDistribution, "deadlock detected", nil,
		w.Clock.Now(), backoffPolicy(a.cfg.Planning.Retry))
	require.NoError(t, failures.Record(context.Background(), record))
	w.Clock.Advance(time.Hour)

	// Act
	sweep(context.Background(), a)

	// Assert
	due, err := failures.FindDue(context.Background(), w.Clock.Now().Add(24*time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRunWorker_StopsWhenContextIsDone(t *testing.T) {
	// Arrange
	a, _ := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})

	// Act
	go func() {
		runWorker(ctx, a, time.Hour)
		close(done)
	}()

	// Assert
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
