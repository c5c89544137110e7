package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cargonode/internal/adapters/telemetry/progrock"
	"go.trai.ch/cargonode/internal/core/ports"
)

func TestRecorder_RecordAttachesVertexToContext(t *testing.T) {
	recorder := progrock.New()

	ctx, vertex := recorder.Record(context.Background(), "check")
	require.NotNil(t, vertex)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("$ npx biome check\n"))
	require.NoError(t, err)
	_, err = vertex.Stderr().Write([]byte("warning\n"))
	require.NoError(t, err)

	vertex.Complete(nil)
	require.NoError(t, recorder.Close())
}

func TestRecorder_RecordSameStepTwice(t *testing.T) {
	recorder := progrock.New()

	_, first := recorder.Record(context.Background(), "build")
	_, second := recorder.Record(context.Background(), "build")

	assert.NotSame(t, first, second)
	first.Complete(nil)
	second.Complete(errors.New("tsup exited with 1"))
	require.NoError(t, recorder.Close())
}
