package arcadedb

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseExists(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		assert.Equal(t, http.MethodGet, call.method)
		assert.Equal(t, "/api/v1/exists/mydb", call.path)
		return okResponse(true), nil
	}}
	c := newTestClient(ft)

	exists, err := c.DatabaseExists(context.Background(), "mydb")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDatabaseExistsFalse(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse(false), nil
	}}
	c := newTestClient(ft)

	exists, err := c.DatabaseExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateDatabase(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		assert.Equal(t, "/api/v1/server", call.path)
		assert.Equal(t, "create database mydb", call.body["command"])
		return okResponse("ok"), nil
	}}
	c := newTestClient(ft)

	require.NoError(t, c.CreateDatabase(context.Background(), "mydb"))
}

func TestCreateDatabaseConflict(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(500, "Database 'mydb' already exists", "DatabaseOperationException"), nil
	}}
	c := newTestClient(ft)

	err := c.CreateDatabase(context.Background(), "mydb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabase))
}

func TestDropDatabaseMissing(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(500, "Database 'mydb' does not exist", "DatabaseOperationException"), nil
	}}
	c := newTestClient(ft)

	err := c.DropDatabase(context.Background(), "mydb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabase))
}

func TestManageDatabaseRejectsNonOkAck(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return okResponse("maybe"), nil
	}}
	c := newTestClient(ft)

	err := c.CreateDatabase(context.Background(), "mydb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabase))
}

func TestListDatabases(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		assert.Equal(t, "/api/v1/databases", call.path)
		return okResponse([]string{"mydb", "otherdb"}), nil
	}}
	c := newTestClient(ft)

	names, err := c.ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"mydb", "otherdb"}, names)
}

func TestServerCommandLoginFailure(t *testing.T) {
	ft := &fakeTransport{handler: func(call fakeCall) (*Response, error) {
		return errResponse(401, "Unauthorized", "com.arcadedb.server.security.ServerSecurityException"), nil
	}}
	c := newTestClient(ft)

	_, err := c.serverCommand(context.Background(), "list databases")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginFailed))
}

func TestServerOperationsValidateNames(t *testing.T) {
	c := newTestClient(&fakeTransport{handler: func(fakeCall) (*Response, error) {
		t.Fatal("no network call expected")
		return nil, nil
	}})

	_, err := c.DatabaseExists(context.Background(), "")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(c.CreateDatabase(context.Background(), ""), ErrValidation))
	assert.True(t, errors.Is(c.DropDatabase(context.Background(), ""), ErrValidation))
}
