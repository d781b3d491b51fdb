package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/internal/testutil"
)

func TestRun_Idempotent(t *testing.T) {
	r := repo.New(testutil.NewDB(t))
	ctx := context.Background()

	res, err := Run(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Categories: 4, Products: 8}, res)

	admin, err := r.UserExist(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	res, err = Run(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	n, err := r.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)
}
