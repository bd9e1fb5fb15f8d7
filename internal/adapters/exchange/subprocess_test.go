package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain/shared"
)

func TestSubprocessDispatchSuccess(t *testing.T) {
	dir := t.TempDir()
	// A stand-in algorithm: standby routes for both drivers, success flag on
	// stdout.
	script := `echo '{"d1":null,"d2":null}' > destination.json
echo '{"d1":[],"d2":[]}' > planned_route.json
echo DONE`

	dispatcher := NewSubprocessDispatcher(dir, script, "DONE", shared.NewRealClock())
	result, err := dispatcher.Dispatch(context.Background(), exchangeSnapshot(t))
	require.NoError(t, err)

	assert.Nil(t, result.Destinations["d1"])
	assert.Empty(t, result.PlannedRoutes["d2"])
}

func TestSubprocessDispatchWritesInputs(t *testing.T) {
	dir := t.TempDir()
	script := `test -s driver_input_info.json || exit 1
test -s unallocated_orders.json || exit 1
test -s ongoing_orders.json || exit 1
echo '{}' > destination.json
echo '{}' > planned_route.json
echo DONE`

	dispatcher := NewSubprocessDispatcher(dir, script, "DONE", shared.NewRealClock())
	_, err := dispatcher.Dispatch(context.Background(), exchangeSnapshot(t))
	require.NoError(t, err)
}

func TestSubprocessDispatchMissingSuccessFlag(t *testing.T) {
	dir := t.TempDir()
	script := `echo '{}' > destination.json
echo '{}' > planned_route.json`

	dispatcher := NewSubprocessDispatcher(dir, script, "DONE", shared.NewRealClock())
	_, err := dispatcher.Dispatch(context.Background(), exchangeSnapshot(t))

	var policyErr *shared.PolicyFailedError
	assert.ErrorAs(t, err, &policyErr)
}

func TestSubprocessDispatchStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	// The algorithm signals success but never writes its outputs.
	dispatcher := NewSubprocessDispatcher(dir, "echo DONE", "DONE", shared.NewRealClock())
	_, err := dispatcher.Dispatch(context.Background(), exchangeSnapshot(t))

	var policyErr *shared.PolicyFailedError
	require.ErrorAs(t, err, &policyErr)
}

func TestSubprocessDispatchExitFailure(t *testing.T) {
	dir := t.TempDir()
	dispatcher := NewSubprocessDispatcher(dir, "exit 3", "DONE", shared.NewRealClock())
	_, err := dispatcher.Dispatch(context.Background(), exchangeSnapshot(t))

	var policyErr *shared.PolicyFailedError
	assert.ErrorAs(t, err, &policyErr)
}

func TestSubprocessDispatchTimeout(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dispatcher := NewSubprocessDispatcher(dir, "sleep 30", "DONE", shared.NewRealClock())
	_, err := dispatcher.Dispatch(ctx, exchangeSnapshot(t))
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
