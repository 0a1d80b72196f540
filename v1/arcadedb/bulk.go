package arcadedb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// BulkOptions carries the optional parameters of the bulk operations.
type BulkOptions struct {
	// BatchSize is the number of records (or rows, for deletes) per
	// network round trip. Defaults to DefaultBatchSize.
	BatchSize int

	// Concurrency is the number of batches in flight at once. Defaults to
	// 1 (sequential). Record-to-batch assignment is deterministic and
	// based only on input order regardless of concurrency.
	Concurrency int

	// Session attaches every batch to a running transaction.
	Session *Session
}

func (o *BulkOptions) withDefaults() BulkOptions {
	var opts BulkOptions
	if o != nil {
		opts = *o
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return opts
}

// batchOutcome is the per-batch accounting aggregated after all batches
// completed. Aggregating afterwards avoids shared counters across goroutines.
type batchOutcome struct {
	size int
	err  error
}

// runBatches partitions items [0,total) into contiguous batches of at most
// batchSize, runs fn per batch (possibly concurrently) and returns the
// outcomes in batch order. fn receives the half-open index range of the
// batch. Batch failures are collected, not propagated: one bad batch must
// not abort the remaining ones.
func (c *Client) runBatches(ctx context.Context, total, batchSize, concurrency int, fn func(ctx context.Context, lo, hi int) error) []batchOutcome {
	numBatches := (total + batchSize - 1) / batchSize
	outcomes := make([]batchOutcome, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := 0; i < numBatches; i++ {
		lo := i * batchSize
		hi := min(lo+batchSize, total)
		g.Go(func() error {
			outcomes[i] = batchOutcome{size: hi - lo, err: fn(gctx, lo, hi)}
			return nil
		})
	}
	// Errors stay in the outcomes; the group only coordinates completion.
	_ = g.Wait()
	return outcomes
}

// BulkInsert inserts the records into typeName in batches, one multi-insert
// script per batch. A failing batch is counted and skipped, the remaining
// batches still run; when any batch failed the call returns an
// ErrBulkOperation carrying the failed and total record counts. On full
// success it returns the number of inserted records.
func (c *Client) BulkInsert(ctx context.Context, typeName string, records []map[string]interface{}, opts *BulkOptions) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if typeName == "" {
		return 0, newValidationError("type name is required")
	}
	o := opts.withDefaults()

	start := time.Now()
	outcomes := c.runBatches(ctx, len(records), o.BatchSize, o.Concurrency, func(ctx context.Context, lo, hi int) error {
		statements := make([]string, 0, hi-lo)
		for _, record := range records[lo:hi] {
			statements = append(statements, fmt.Sprintf("INSERT INTO %s SET %s", typeName, setClause(record)))
		}
		_, err := c.Command(ctx, "sqlscript", strings.Join(statements, ";\n"), &QueryOptions{Session: o.Session})
		return err
	})

	processed, failed, firstErr := tallyOutcomes(outcomes)
	c.observeOperation("bulk_insert", c.cfg.Connection.Database, typeName,
		time.Since(start), firstErr, int64(len(records)), nil)

	if failed > 0 {
		return processed, newBulkError(
			fmt.Sprintf("bulk insert partially failed for type %s", typeName),
			failed, len(records), firstErr)
	}
	return processed, nil
}

// BulkUpsert updates-or-inserts the records into typeName, keyed on the
// keyField value of each record. Records missing the key field count as
// failed without aborting their batch. Accounting and the partial-failure
// contract match BulkInsert.
func (c *Client) BulkUpsert(ctx context.Context, typeName string, records []map[string]interface{}, keyField string, opts *BulkOptions) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if typeName == "" {
		return 0, newValidationError("type name is required")
	}
	if keyField == "" {
		return 0, newValidationError("key field is required for upsert operations")
	}
	o := opts.withDefaults()

	// Records without the key field can never produce a statement; count
	// them per batch up front so batch failures stay attributable to the
	// server. A failed batch already counts all of its records as failed,
	// missing-key ones included.
	numBatches := (len(records) + o.BatchSize - 1) / o.BatchSize
	missingPerBatch := make([]int, numBatches)
	for i, record := range records {
		if _, ok := record[keyField]; !ok {
			missingPerBatch[i/o.BatchSize]++
		}
	}

	start := time.Now()
	outcomes := c.runBatches(ctx, len(records), o.BatchSize, o.Concurrency, func(ctx context.Context, lo, hi int) error {
		statements := make([]string, 0, hi-lo)
		for _, record := range records[lo:hi] {
			keyValue, ok := record[keyField]
			if !ok {
				continue
			}
			statements = append(statements, fmt.Sprintf("UPDATE %s SET %s UPSERT WHERE %s = %s",
				typeName, setClause(record), keyField, sqlLiteral(keyValue)))
		}
		if len(statements) == 0 {
			return nil
		}
		_, err := c.Command(ctx, "sqlscript", strings.Join(statements, ";\n"), &QueryOptions{Session: o.Session})
		return err
	})

	processed, failed := 0, 0
	var firstErr error
	for i, out := range outcomes {
		if out.err != nil {
			failed += out.size
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		processed += out.size - missingPerBatch[i]
		failed += missingPerBatch[i]
	}
	c.observeOperation("bulk_upsert", c.cfg.Connection.Database, typeName,
		time.Since(start), firstErr, int64(len(records)), nil)

	if failed > 0 {
		return processed, newBulkError(
			fmt.Sprintf("bulk upsert partially failed for type %s", typeName),
			failed, len(records), firstErr)
	}
	return processed, nil
}

// BulkDelete deletes rows matching each condition, bounded to BatchSize rows
// per round trip, looping per condition until the server reports zero
// affected rows. The bound works around the server's rejection of unbounded
// deletes as non-idempotent. Returns the total number of deleted rows across
// all conditions.
func (c *Client) BulkDelete(ctx context.Context, typeName string, conditions []string, opts *BulkOptions) (int, error) {
	if typeName == "" {
		return 0, newValidationError("type name is required")
	}
	if len(conditions) == 0 {
		return 0, newValidationError("bulk delete without conditions is not allowed, use SafeDeleteAll to clear a type")
	}
	o := opts.withDefaults()

	start := time.Now()
	totalDeleted := 0
	failedConditions := 0
	var firstErr error

	for _, condition := range conditions {
		deleted, err := c.deleteRounds(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s LIMIT %d", typeName, condition, o.BatchSize),
			o.BatchSize, o.Session)
		totalDeleted += deleted
		if err != nil {
			failedConditions++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	c.observeOperation("bulk_delete", c.cfg.Connection.Database, typeName,
		time.Since(start), firstErr, int64(totalDeleted), nil)

	if failedConditions > 0 {
		return totalDeleted, newBulkError(
			fmt.Sprintf("bulk delete partially failed for type %s", typeName),
			failedConditions, len(conditions), firstErr)
	}
	return totalDeleted, nil
}

// deleteRounds repeats one bounded delete statement until the server reports
// fewer affected rows than the bound, accumulating the total. The round
// count is capped by maxDeleteRounds as a safety ceiling.
func (c *Client) deleteRounds(ctx context.Context, statement string, batchSize int, session *Session) (int, error) {
	total := 0
	for round := 0; round < maxDeleteRounds; round++ {
		res, err := c.Command(ctx, "sql", statement, &QueryOptions{Session: session})
		if err != nil {
			return total, err
		}
		affected := affectedCount(res)
		total += affected
		if affected < batchSize {
			return total, nil
		}
	}
	return total, newBulkError("delete loop hit the safety ceiling", 0, total, nil)
}

// SafeDeleteOptions carries the optional parameters of SafeDeleteAll.
type SafeDeleteOptions struct {
	// BatchSize bounds the rows deleted per round in the fallback path.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// MaxRetries bounds the per-round retries on transient failure.
	// Defaults to the client's Retry.MaxAttempts.
	MaxRetries int
}

// SafeDeleteAll removes every record of typeName. It first attempts a single
// TRUNCATE; when the server rejects the statement itself (ErrTransaction or
// ErrQueryParsing), it falls back to rounds of bounded deletes, retrying each
// round up to MaxRetries times on transient failure, until a round deletes
// fewer rows than the bound. Any other truncate failure is returned as is.
// Returns the number of rows deleted (zero when the truncate fast path
// succeeded, as TRUNCATE does not report a count).
func (c *Client) SafeDeleteAll(ctx context.Context, typeName string, opts *SafeDeleteOptions) (int, error) {
	if typeName == "" {
		return 0, newValidationError("type name is required")
	}
	batchSize := DefaultBatchSize
	maxRetries := c.cfg.Retry.MaxAttempts
	if opts != nil {
		if opts.BatchSize > 0 {
			batchSize = opts.BatchSize
		}
		if opts.MaxRetries > 0 {
			maxRetries = opts.MaxRetries
		}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	start := time.Now()
	res, err := c.Command(ctx, "sql", fmt.Sprintf("TRUNCATE TYPE %s UNSAFE", typeName), nil)
	if err == nil {
		c.observeOperation("safe_delete_all", c.cfg.Connection.Database, typeName,
			time.Since(start), nil, int64(affectedCount(res)), nil)
		return affectedCount(res), nil
	}
	// Only a truncate the server refused to run warrants the fallback.
	// Anything else (schema, connection, auth) would fail the bounded
	// deletes the same way.
	if !errors.Is(err, ErrTransaction) && !errors.Is(err, ErrQueryParsing) {
		c.observeOperation("safe_delete_all", c.cfg.Connection.Database, typeName,
			time.Since(start), err, 0, nil)
		return 0, err
	}
	c.logger.Debug("truncate rejected, falling back to batched deletion", err,
		map[string]interface{}{"type": typeName})

	statement := fmt.Sprintf("DELETE FROM %s LIMIT %d", typeName, batchSize)
	total := 0
	var lastErr error

	for round := 0; round < maxDeleteRounds; round++ {
		var affected int
		attempt := func() error {
			res, err := c.Command(ctx, "sql", statement, nil)
			if err != nil {
				if isTransientTransactionError(err) {
					return err
				}
				return backoff.Permanent(err)
			}
			affected = affectedCount(res)
			return nil
		}

		policy := backoff.WithContext(backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(c.cfg.Retry.Delay),
				backoff.WithMultiplier(c.cfg.Retry.Backoff),
			),
			uint64(maxRetries),
		), ctx)

		if err := backoff.Retry(attempt, policy); err != nil {
			lastErr = err
			break
		}

		total += affected
		if affected < batchSize {
			break
		}
	}

	c.observeOperation("safe_delete_all", c.cfg.Connection.Database, typeName,
		time.Since(start), lastErr, int64(total), nil)
	if lastErr != nil {
		return total, lastErr
	}
	return total, nil
}

// tallyOutcomes folds per-batch outcomes into processed/failed counts and
// the first error encountered, in batch order.
func tallyOutcomes(outcomes []batchOutcome) (processed, failed int, firstErr error) {
	for _, out := range outcomes {
		if out.err != nil {
			failed += out.size
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		processed += out.size
	}
	return processed, failed, firstErr
}
