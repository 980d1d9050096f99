package supervisor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_NilHooksAreNoOps(t *testing.T) {
	var w Worker
	assert.NoError(t, w.initializeCommon(context.Background()))
	assert.NoError(t, w.initializeParent(context.Background()))
	assert.NoError(t, w.initializeChild(context.Background()))
	assert.NotPanics(t, w.finalizeCommon)
	assert.NotPanics(t, w.finalizeParent)
	assert.NotPanics(t, w.finalizeChild)
	assert.NotPanics(t, func() { w.onMessage(RoleChild, "hello") })

	action, err := w.work(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stop, action)
}

func TestWorker_WorkDelegatesToField(t *testing.T) {
	calls := 0
	w := Worker{
		Work: func(ctx context.Context) (Action, error) {
			calls++
			return Continue, nil
		},
	}

	action, err := w.work(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Continue, action)
	assert.Equal(t, 1, calls)
}

func TestWorker_OnMessageDelegatesToField(t *testing.T) {
	var gotRole Role
	var gotMsg string
	w := Worker{
		OnMessage: func(role Role, msg string) {
			gotRole = role
			gotMsg = msg
		},
	}

	w.onMessage(RoleParent, "terminating")
	assert.Equal(t, RoleParent, gotRole)
	assert.Equal(t, "terminating", gotMsg)
}
