package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"user-api/internal/entity"
	"user-api/internal/repository"
)

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]string, 0, len(w.msgs))
	for _, m := range w.msgs {
		keys = append(keys, string(m.Key))
	}
	return keys
}

func newTestService(events EventWriter) *UserService {
	return NewUserService(repository.NewUserRepository(), events)
}

func TestCreateUserRejectsInvalid(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &entity.User{Name: "", Email: "bad", Age: -5})

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Errors, 3)
	assert.Empty(t, svc.GetUsers(ctx))
}

func TestCreateAndGetUser(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &entity.User{ID: 10, Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	got, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "ana@x.com", got.Email)
	assert.Equal(t, 30, got.Age)

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserValidationWins(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.UpdateUser(context.Background(), 9999, &entity.User{Name: "", Email: "x@x.com"})

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.False(t, errors.Is(err, ErrUserNotFound))
}

func TestUpdateUserEchoesInput(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)

	input := &entity.User{Name: "Ana B", Email: "ana@x.com", Age: 31}
	updated, err := svc.UpdateUser(ctx, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ID)
	assert.Equal(t, input, updated)

	stored, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.User{ID: created.ID, Name: "Ana B", Email: "ana@x.com", Age: 31}, *stored)
}

func TestUpdateMissingUser(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)
	before := svc.GetUsers(ctx)

	_, err = svc.UpdateUser(ctx, 9999, &entity.User{Name: "Bob", Email: "bob@x.com", Age: 1})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, before, svc.GetUsers(ctx))
}

func TestDeleteUserTwice(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	created, err := svc.CreateUser(ctx, &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)

	assert.NoError(t, svc.DeleteUser(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, created.ID), ErrUserNotFound)
}

func TestUserEventsArePublished(t *testing.T) {
	w := &recordingWriter{}
	svc := newTestService(w)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)
	_, err = svc.UpdateUser(ctx, created.ID, &entity.User{Name: "Ana B", Email: "ana@x.com", Age: 31})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, created.ID))

	// failed operations publish nothing
	_, _ = svc.CreateUser(ctx, &entity.User{})
	_ = svc.DeleteUser(ctx, created.ID)

	assert.Equal(t, []string{"user-created-1", "user-updated-1", "user-deleted-1"}, w.keys())

	var updated entity.User
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &updated))
	assert.Equal(t, entity.User{ID: 1, Name: "Ana B", Email: "ana@x.com", Age: 31}, updated)
}

func TestUpdateEventRacingDeleteCarriesUpdatedUser(t *testing.T) {
	w := &recordingWriter{}
	svc := newTestService(w)
	ctx := context.Background()

	const n = 50
	for i := 0; i < n; i++ {
		_, err := svc.CreateUser(ctx, &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for id := 1; id <= n; id++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_, _ = svc.UpdateUser(ctx, id, &entity.User{Name: "Ana B", Email: "ana@x.com", Age: 31})
		}(id)
		go func(id int) {
			defer wg.Done()
			_ = svc.DeleteUser(ctx, id)
		}(id)
	}
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, msg := range w.msgs {
		if !strings.HasPrefix(string(msg.Key), "user-updated-") {
			continue
		}
		var updated entity.User
		require.NoError(t, json.Unmarshal(msg.Value, &updated))
		assert.NotZero(t, updated.ID, string(msg.Key))
		assert.Equal(t, "Ana B", updated.Name)
		assert.NotEqual(t, "user-updated-0", string(msg.Key))
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	svc := newTestService(w)

	created, err := svc.CreateUser(context.Background(), &entity.User{Name: "Ana", Email: "ana@x.com", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}
