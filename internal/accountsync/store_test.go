package accountsync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/testhelpers"
)

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Recipes:   []models.Recipe{{ID: "r1", Title: "Soup", Source: models.Source{URL: "https://soup"}}},
		Favorites: []string{"r1"},
		Planner:   models.Plan{"2024-01-01": {models.Dinner: "r1"}},
		Profile:   models.Profile{Name: "Ada"},
	}
}

func TestS3StorePush(t *testing.T) {
	api := &mockObjectAPI{}
	store := NewS3StoreWithClient(api, "bucket")

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "bucket" &&
			*in.Key == "snapshots/u1.json" &&
			*in.ContentType == "application/json" &&
			bytes.Contains(body, []byte(`"favorites":["r1"]`))
	})).Return(&s3.PutObjectOutput{}, nil)

	require.NoError(t, store.Push(context.Background(), "u1", sampleSnapshot()))
	api.AssertExpectations(t)
}

func TestS3StorePull(t *testing.T) {
	api := &mockObjectAPI{}
	store := NewS3StoreWithClient(api, "bucket")

	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Key == "snapshots/u1.json"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader([]byte(`{"favorites":["r9"],"profile":{"name":"Bo"}}`))),
	}, nil)

	snap, err := store.Pull(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r9"}, snap.Favorites)
	assert.Equal(t, "Bo", snap.Profile.Name)
}

func TestS3StorePullMissing(t *testing.T) {
	api := &mockObjectAPI{}
	store := NewS3StoreWithClient(api, "bucket")
	api.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	_, err := store.Pull(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StorePushError(t *testing.T) {
	api := &mockObjectAPI{}
	store := NewS3StoreWithClient(api, "bucket")
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	err := store.Push(context.Background(), "u1", sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestGormStore(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(testhelpers.SetupTestDatabase(t))

	_, err := store.Pull(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Push(ctx, "u1", sampleSnapshot()))
	updated := sampleSnapshot()
	updated.Favorites = []string{"r1", "r2"}
	require.NoError(t, store.Push(ctx, "u1", updated))

	snap, err := store.Pull(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, snap.Favorites)
	assert.Equal(t, "r1", snap.Planner["2024-01-01"][models.Dinner])

	_, err = store.Pull(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}
