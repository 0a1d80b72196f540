package arcadedb

import (
	"context"
	"fmt"
	"time"
)

// serverCommand submits one command to the server-level endpoint. Unlike the
// data endpoints it addresses the server itself, not a database, and is used
// for database management and for the reachability probe at construction.
func (c *Client) serverCommand(ctx context.Context, command string) (*Result, error) {
	resp, err := c.post(ctx, serverEndpoint, map[string]interface{}{"command": command}, nil, errorContext{})
	if err != nil {
		return nil, err
	}
	return decodeResult(resp.Body)
}

// DatabaseExists reports whether the named database exists on the server.
func (c *Client) DatabaseExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, newValidationError("database name is required")
	}

	resp, err := c.get(ctx, existsEndpoint+"/"+name)
	if err != nil {
		return false, err
	}
	res, err := decodeResult(resp.Body)
	if err != nil {
		return false, err
	}
	v, ok := res.Scalar()
	if !ok {
		return false, newDatabaseError("unexpected existence response for database %s", name)
	}
	exists, _ := v.(bool)
	return exists, nil
}

// CreateDatabase creates the named database. Creating a database that
// already exists fails with a Database error.
func (c *Client) CreateDatabase(ctx context.Context, name string) error {
	return c.manageDatabase(ctx, "create database", name)
}

// DropDatabase removes the named database and all its data. Dropping a
// database that does not exist fails with a Database error.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	return c.manageDatabase(ctx, "drop database", name)
}

func (c *Client) manageDatabase(ctx context.Context, verb, name string) error {
	if name == "" {
		return newValidationError("database name is required")
	}

	start := time.Now()
	res, err := c.serverCommand(ctx, verb+" "+name)
	c.observeOperation("server_command", name, verb, time.Since(start), err, 0, nil)
	if err != nil {
		return err
	}

	// The server acknowledges management commands with a bare "ok".
	if v, ok := res.Scalar(); ok {
		if s, ok := v.(string); ok && s == "ok" {
			return nil
		}
	}
	return newDatabaseError("server did not acknowledge %q for database %s", verb, name)
}

// ListDatabases returns the names of the databases on the server.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, databasesEndpoint)
	if err != nil {
		return nil, err
	}
	res, err := decodeResult(resp.Body)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Values()))
	for _, v := range res.Values() {
		s, ok := v.(string)
		if !ok {
			return nil, newDatabaseError("unexpected database list entry %v", v)
		}
		names = append(names, s)
	}
	return names, nil
}

// Ping verifies that the server is reachable with the configured
// credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.serverCommand(ctx, "list databases"); err != nil {
		return fmt.Errorf("server ping failed: %w", err)
	}
	return nil
}
