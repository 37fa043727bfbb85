package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10, "back")
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
	require.Equal(t, "back", user.BodyLocation)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)
}

func TestUserService_TrackLesion(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.TrackLesion(ctx, 3, 30, "left_arm_002", "left arm")
	require.NoError(t, err)

	user, err := svc.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, "left_arm_002", user.LesionID)
	require.Equal(t, "left arm", user.BodyLocation)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	// новая проверка сбрасывает отслеживаемый очаг
	user, err = svc.BeginCheck(ctx, 3, 30, "")
	require.NoError(t, err)
	require.Empty(t, user.LesionID)
}

func TestUserService_CompleteCheck(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.BeginCheck(ctx, 4, 40, "neck")
	require.NoError(t, err)

	user, err := svc.CompleteCheck(ctx, 4, 40, "neck_001")
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, "neck_001", user.LesionID)
	require.Equal(t, "neck", user.BodyLocation)

	// пустой идентификатор не сбрасывает очаг
	user, err = svc.CompleteCheck(ctx, 4, 40, "")
	require.NoError(t, err)
	require.Equal(t, "neck_001", user.LesionID)
}
