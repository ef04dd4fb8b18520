package httpapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/httpapi"
	"github.com/dalildz/dalil/pkg/validation"
)

func TestFormSessions(t *testing.T) {
	t.Parallel()

	sessions := httpapi.NewFormSessions(validation.New(), 2, 0)

	id1, form1 := sessions.Open()
	id2, _ := sessions.Open()
	assert.NotEqual(t, id1, id2)

	got, ok := sessions.Get(id1)
	require.True(t, ok)
	assert.Same(t, form1, got)

	sessions.Open()
	assert.Equal(t, 2, sessions.Len())
	_, ok = sessions.Get(id2)
	assert.False(t, ok, "least recently used session is evicted at capacity")

	closed, ok := sessions.Close(id1)
	assert.True(t, ok)
	assert.Same(t, form1, closed)
	_, ok = sessions.Close(id1)
	assert.False(t, ok)
	assert.Zero(t, sessions.Purge(), "no idle timeout configured")
}
