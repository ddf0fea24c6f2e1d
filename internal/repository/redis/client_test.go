package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestClient_Ping(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := Wrap(db)

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.Error(t, client.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
