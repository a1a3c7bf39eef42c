package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/testutil"
	"github.com/yoockh/portfolio/internal/utils"
)

func intPtr(v int) *int { return &v }

func TestCommentService_CreateStartsUnapproved(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)
	ctx := context.Background()

	c, err := svc.Create(ctx, author, CreateCommentInput{Message: "  Great work!  ", Rating: intPtr(4)})
	require.NoError(t, err)
	assert.False(t, c.IsApproved)
	assert.Equal(t, "Great work!", c.Message)
	assert.Equal(t, 4, c.Rating)
	assert.Equal(t, "Jane Doe", c.Name)
	require.NotNil(t, c.User)
	assert.Equal(t, author.ID, c.User.ID)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)
}

func TestCommentService_CreateDefaultsRating(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)

	c, err := svc.Create(context.Background(), author, CreateCommentInput{Message: "Nice"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRating, c.Rating)
}

func TestCommentService_CreateValidation(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)

	tests := []struct {
		name  string
		in    CreateCommentInput
		field string
	}{
		{"empty message", CreateCommentInput{Message: "   "}, "message"},
		{"message too long", CreateCommentInput{Message: strings.Repeat("x", models.CommentMaxLength+1)}, "message"},
		{"rating too low", CreateCommentInput{Message: "ok", Rating: intPtr(0)}, "rating"},
		{"rating too high", CreateCommentInput{Message: "ok", Rating: intPtr(6)}, "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), author, tt.in)
			var ae *utils.AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, utils.CodeInvalidArgument, ae.Code)
			assert.Contains(t, ae.Fields, tt.field)
		})
	}
}

func TestCommentService_CreateAtMaxLength(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)

	_, err := svc.Create(context.Background(), author, CreateCommentInput{Message: strings.Repeat("x", models.CommentMaxLength)})
	assert.NoError(t, err)
}

func TestCommentService_ApproveAndUnapprove(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)
	ctx := context.Background()

	c, err := svc.Create(ctx, author, CreateCommentInput{Message: "Hello"})
	require.NoError(t, err)

	approved, err := svc.SetApproval(ctx, c.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Hello", public[0].Message)
	assert.Empty(t, public[0].Email)
	require.NotNil(t, public[0].User)
	assert.Equal(t, "Jane Doe", public[0].User.Name)
	assert.Empty(t, public[0].User.Email)

	_, err = svc.SetApproval(ctx, c.ID.Hex(), false)
	require.NoError(t, err)

	public, err = svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "jane@example.com", all[0].User.Email)
}

func TestCommentService_ListPublicNewestFirst(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		c, err := svc.Create(ctx, author, CreateCommentInput{Message: msg})
		require.NoError(t, err)
		_, err = svc.SetApproval(ctx, c.ID.Hex(), true)
		require.NoError(t, err)
	}

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 3)
	assert.Equal(t, "third", public[0].Message)
	assert.Equal(t, "first", public[2].Message)
}

func TestCommentService_Delete(t *testing.T) {
	store := testutil.NewStore()
	svc := NewCommentService(store.Comments(), store.Users())
	author := store.SeedUser(t, "Jane Doe", "jane@example.com", models.RoleUser)
	ctx := context.Background()

	c, err := svc.Create(ctx, author, CreateCommentInput{Message: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID.Hex()))
	assert.True(t, utils.IsCode(svc.Delete(ctx, c.ID.Hex()), utils.CodeNotFound))
	assert.True(t, utils.IsCode(svc.Delete(ctx, "zzz"), utils.CodeNotFound))
}
