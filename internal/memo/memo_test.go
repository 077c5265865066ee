package memo_test

import (
	"context"
	"strings"
	"testing"

	"weatherdiary/internal/db/dbtest"
	"weatherdiary/internal/memo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	svc := &memo.Service{DB: dbtest.Open(t)}
	ctx := context.Background()

	m, err := svc.Save(ctx, "this is new memo~")
	require.NoError(t, err)
	assert.NotZero(t, m.ID)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "this is new memo~", got.Text)
}

func TestGet_NotFound(t *testing.T) {
	svc := &memo.Service{DB: dbtest.Open(t)}

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, memo.ErrNotFound)
}

func TestSave_Validation(t *testing.T) {
	svc := &memo.Service{DB: dbtest.Open(t)}
	ctx := context.Background()

	_, err := svc.Save(ctx, " ")
	assert.ErrorIs(t, err, memo.ErrValidation)

	_, err = svc.Save(ctx, strings.Repeat("가", memo.MaxTextLength+1))
	assert.ErrorIs(t, err, memo.ErrValidation)

	_, err = svc.Save(ctx, "bad \xff\xfe text")
	assert.ErrorIs(t, err, memo.ErrValidation)
}

func TestList(t *testing.T) {
	svc := &memo.Service{DB: dbtest.Open(t)}
	ctx := context.Background()

	empty, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Save(ctx, text)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Text)
	assert.Equal(t, "one", all[2].Text)

	limited, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
