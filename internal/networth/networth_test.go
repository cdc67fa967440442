package networth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/testutil"
)

const testEmail = "meera@example.com"

type staticIdentity string

func (s staticIdentity) Email() string { return string(s) }

func setup(t *testing.T) (*api.Client, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	client, err := api.New(backend.URL())
	require.NoError(t, err)
	return client, backend
}
