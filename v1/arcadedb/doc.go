// Package arcadedb provides an HTTP client driver for ArcadeDB.
//
// The arcadedb package offers a typed interface over ArcadeDB's HTTP API,
// providing query and command execution, server-side transactions, bulk
// data operations, graph traversal helpers and vector index operations with
// a focus on reliability and predictable error handling.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Transport interface: Defines the contract for the network layer
//   - Client struct: Concrete implementation over ArcadeDB's HTTP API
//   - NewClient constructor: Returns *Client (concrete type)
//   - FX module: Provides *Client for dependency injection
//
// Core features:
//   - Query and command execution in every server-supported language
//     (sql, sqlscript, graphql, cypher, gremlin, mongo)
//   - Typed error classification: every remote failure wraps one of the
//     package's sentinel kinds, checkable with errors.Is
//   - Automatic query-as-command retry when the server rejects a statement
//     as non-idempotent
//   - Server-side transactions with a session state machine and bounded
//     retry on transient failures
//   - Bulk insert/upsert/delete with batching, optional concurrency and
//     partial-failure accounting
//   - Multi-type record fetching and graph triplet traversal with automatic
//     fallback strategies
//   - Vector index creation and similarity search, evaluated server-side
//   - Integration with the Logger package for structured logging
//
// # Direct Usage (Without FX)
//
//	import (
//		"context"
//
//		"github.com/Aleph-Alpha/arcadedb/v1/arcadedb"
//		"github.com/Aleph-Alpha/arcadedb/v1/logger"
//	)
//
//	log := logger.NewLogger(logger.Config{Level: logger.Info})
//	client, err := arcadedb.NewClient(arcadedb.Config{
//		Connection: arcadedb.Connection{
//			Host:     "localhost",
//			Username: "root",
//			Password: "playwithdata",
//			Database: "mydb",
//		},
//	}, log)
//	if err != nil {
//		log.Fatal("failed to connect", err)
//	}
//	defer client.Close()
//
//	ctx := context.Background()
//	res, err := client.Query(ctx, "sql", "SELECT FROM Person WHERE age > 30", nil)
//	for _, rec := range res.Records() {
//		name, _ := rec.GetString("name")
//		// ...
//	}
//
// # Error Handling
//
// Every error returned by a remote call wraps exactly one sentinel kind:
//
//	_, err := client.Query(ctx, "sql", "SELEC broken", nil)
//	if errors.Is(err, arcadedb.ErrQueryParsing) {
//		e, _ := arcadedb.AsError(err)
//		fmt.Println("offending query:", e.Query)
//	}
//
// # Transactions
//
//	session, err := client.BeginTransaction(ctx, arcadedb.ReadCommitted)
//	if err != nil {
//		return err
//	}
//	_, err = client.Command(ctx, "sql", "INSERT INTO Person SET name = 'a'",
//		&arcadedb.QueryOptions{Session: session})
//	if err != nil {
//		client.Rollback(ctx, session)
//		return err
//	}
//	return client.Commit(ctx, session)
//
// Or let the driver manage the session, rollback and retry:
//
//	results, err := client.ExecuteTransaction(ctx, []string{
//		"INSERT INTO Person SET name = 'a'",
//		"INSERT INTO Person SET name = 'b'",
//	}, nil)
//
// # Bulk Operations
//
//	inserted, err := client.BulkInsert(ctx, "Person", records,
//		&arcadedb.BulkOptions{BatchSize: 500, Concurrency: 4})
//	if errors.Is(err, arcadedb.ErrBulkOperation) {
//		e, _ := arcadedb.AsError(err)
//		fmt.Printf("%d of %d records failed\n", e.FailedRecords, e.TotalRecords)
//	}
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		arcadedb.FXModule,
//		fx.Provide(func() arcadedb.Config {
//			return loadArcadeConfig()
//		}),
//	)
//	app.Run()
//
// # Observability (Observer Hook)
//
// The client supports optional observability through the Observer interface
// from the observability package. The observer receives one event per driver
// operation:
//   - Component: "arcadedb"
//   - Operations: "query", "command", "bulk_insert", "bulk_upsert",
//     "bulk_delete", "safe_delete_all", "get_records", "get_triplets",
//     "create_vector_index", "vector_search", "server_command"
//   - Resource: the database name
//   - SubResource: type name or statement language
//   - Duration, Error, Size and operation-specific Metadata
//
// Attach one with WithObserver:
//
//	obs, _ := observability.NewPrometheusObserver(reg, "myapp")
//	client = client.WithObserver(obs)
//
// # Thread Safety
//
// All methods on the client are safe for concurrent use by multiple
// goroutines. Transaction sessions are the exception: a Session belongs to
// the caller that began it and must not be shared across concurrent logical
// operations.
package arcadedb
