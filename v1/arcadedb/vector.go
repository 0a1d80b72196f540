package arcadedb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// VectorIndexOptions carries the parameters of CreateVectorIndex.
type VectorIndexOptions struct {
	// Dimensions is the vector dimensionality the index is built for.
	// Required.
	Dimensions int

	// Metric selects the distance function, for example "cosine" or
	// "euclidean". Defaults to "cosine".
	Metric string
}

// vectorIndexStatements are the index creation syntaxes attempted in order.
// Server releases differ in which form they accept; the first one that
// parses wins.
var vectorIndexStatements = []string{
	"CREATE INDEX IF NOT EXISTS ON %[1]s (%[2]s) HNSW METRIC %[3]s DIMENSIONS %[4]d",
	"CREATE INDEX ON %[1]s (%[2]s) HNSW METRIC %[3]s DIMENSIONS %[4]d",
	"CREATE VECTOR INDEX ON %[1]s (%[2]s) WITH (metric '%[3]s', dimensions %[4]d)",
}

// CreateVectorIndex creates a vector index over property on typeName. The
// statement is submitted as-is to the server: index construction and later
// similarity evaluation happen entirely server-side, the driver computes
// nothing locally. Syntax rejections cycle through the known index creation
// forms; other failures abort immediately.
func (c *Client) CreateVectorIndex(ctx context.Context, typeName, property string, opts VectorIndexOptions) error {
	if typeName == "" || property == "" {
		return newValidationError("type name and property are required")
	}
	if opts.Dimensions <= 0 {
		return newValidationError("vector index dimensions must be positive")
	}
	if opts.Metric == "" {
		opts.Metric = "cosine"
	}

	start := time.Now()
	var lastErr error
	for _, form := range vectorIndexStatements {
		stmt := fmt.Sprintf(form, typeName, property, opts.Metric, opts.Dimensions)
		_, err := c.Command(ctx, "sql", stmt, nil)
		if err == nil {
			c.observeOperation("create_vector_index", c.cfg.Connection.Database, typeName,
				time.Since(start), nil, int64(opts.Dimensions), nil)
			return nil
		}
		if !errors.Is(err, ErrQueryParsing) {
			c.observeOperation("create_vector_index", c.cfg.Connection.Database, typeName,
				time.Since(start), err, int64(opts.Dimensions), nil)
			return newVectorError(
				fmt.Sprintf("vector index creation failed for %s.%s (dimensions %d)", typeName, property, opts.Dimensions),
				err)
		}
		lastErr = err
	}

	c.observeOperation("create_vector_index", c.cfg.Connection.Database, typeName,
		time.Since(start), lastErr, int64(opts.Dimensions), nil)
	return newVectorError(
		fmt.Sprintf("no supported vector index syntax accepted for %s.%s", typeName, property),
		lastErr)
}

// VectorSearch returns the limit records of typeName closest to vector on
// property, each carrying a server-computed similarity_score property. The
// similarity ranking is evaluated by the server inside one query.
func (c *Client) VectorSearch(ctx context.Context, typeName, property string, vector []float32, limit int) ([]Record, error) {
	if typeName == "" || property == "" {
		return nil, newValidationError("type name and property are required")
	}
	if len(vector) == 0 {
		return nil, newValidationError("search vector must be non-empty")
	}
	if limit <= 0 {
		return nil, newValidationError("limit must be positive")
	}

	stmt := fmt.Sprintf(
		"SELECT *, vectorSimilarity(%s, %s) AS similarity_score FROM %s ORDER BY similarity_score DESC LIMIT %d",
		property, vectorLiteral(vector), typeName, limit)

	start := time.Now()
	res, err := c.Query(ctx, "sql", stmt, nil)
	c.observeOperation("vector_search", c.cfg.Connection.Database, typeName,
		time.Since(start), err, int64(len(vector)), nil)
	if err != nil {
		return nil, newVectorError(
			fmt.Sprintf("vector search failed on %s.%s (dimensions %d)", typeName, property, len(vector)),
			err)
	}
	return res.Records(), nil
}

// VectorSearchRequest describes one search of a BatchVectorSearch call.
type VectorSearchRequest struct {
	// TypeName is the type to search in. Required.
	TypeName string

	// Property is the field holding the stored vectors. Required.
	Property string

	// Vector is the query vector. Required.
	Vector []float32

	// Limit caps the results of this search. Defaults to 10.
	Limit int
}

// BatchVectorSearch runs the searches sequentially and returns one result
// slice per request, in input order. A failing search contributes an empty
// slice without aborting the rest; only when every search fails does the call
// return an error.
func (c *Client) BatchVectorSearch(ctx context.Context, searches []VectorSearchRequest) ([][]Record, error) {
	if len(searches) == 0 {
		return nil, newValidationError("searches must be a non-empty list")
	}
	for i, search := range searches {
		if search.TypeName == "" || search.Property == "" {
			return nil, newValidationError("search %d is missing a type name or property", i)
		}
		if len(search.Vector) == 0 {
			return nil, newValidationError("search %d has an empty vector", i)
		}
	}

	results := make([][]Record, 0, len(searches))
	failedSearches := 0
	var firstErr error
	for i, search := range searches {
		limit := search.Limit
		if limit <= 0 {
			limit = 10
		}
		records, err := c.VectorSearch(ctx, search.TypeName, search.Property, search.Vector, limit)
		if err != nil {
			failedSearches++
			if firstErr == nil {
				firstErr = err
			}
			c.logger.Warn("vector search in batch failed", err, map[string]interface{}{
				"index": i,
				"type":  search.TypeName,
			})
			results = append(results, []Record{})
			continue
		}
		results = append(results, records)
	}

	if failedSearches == len(searches) {
		return results, newVectorError("all vector searches in batch failed", firstErr)
	}
	return results, nil
}

// VectorSimilarity computes, server-side, the similarity between the vector
// stored on one record and the given vector.
func (c *Client) VectorSimilarity(ctx context.Context, rid, property string, vector []float32) (float64, error) {
	if rid == "" || property == "" {
		return 0, newValidationError("record id and property are required")
	}
	if len(vector) == 0 {
		return 0, newValidationError("comparison vector must be non-empty")
	}

	stmt := fmt.Sprintf("SELECT vectorSimilarity(%s, %s) AS similarity_score FROM %s",
		property, vectorLiteral(vector), rid)

	res, err := c.Query(ctx, "sql", stmt, nil)
	if err != nil {
		return 0, newVectorError(
			fmt.Sprintf("vector similarity failed for %s (dimensions %d)", rid, len(vector)),
			err)
	}
	for _, rec := range res.Records() {
		if f, ok := rec["similarity_score"].(float64); ok {
			return f, nil
		}
	}
	return 0, newVectorError(fmt.Sprintf("server returned no similarity score for %s", rid), nil)
}

// vectorLiteral renders a float vector as an SQL array literal.
func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
