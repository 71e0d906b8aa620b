package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRedisCache_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)

	mock.ExpectGet("k").SetVal(`{"name":"a","count":2}`)

	var got sample
	require.NoError(t, c.Get(context.Background(), "k", &got))
	assert.Equal(t, sample{Name: "a", Count: 2}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)

	mock.ExpectGet("k").RedisNil()

	var got sample
	assert.ErrorIs(t, c.Get(context.Background(), "k", &got), ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetBackendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))

	var got sample
	err := c.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestRedisCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)

	mock.ExpectSet("k", `{"name":"a","count":2}`, time.Minute).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), "k", sample{Name: "a", Count: 2}, time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db)

	mock.ExpectDel("a", "b").SetVal(2)

	require.NoError(t, c.Delete(context.Background(), "a", "b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_NilClient(t *testing.T) {
	c := NewRedisCache(nil)
	ctx := context.Background()

	var got sample
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
	assert.NoError(t, c.Set(ctx, "k", sample{}, time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
