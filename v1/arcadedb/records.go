package arcadedb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// GetRecordsOptions carries the optional parameters of GetRecords.
type GetRecordsOptions struct {
	// Where filters every queried type with the same condition.
	Where string

	// Limit caps the total number of returned records. Zero means no cap.
	Limit int

	// Session attaches the queries to a running transaction.
	Session *Session
}

// GetRecords fetches the records of one or more types. A single type runs
// as one direct SELECT. Multiple types first attempt a single combined
// query; when the server cannot parse the combined form, the driver falls
// back to one SELECT per type and concatenates the results in the order the
// types were given. Callers see the same records either way.
func (c *Client) GetRecords(ctx context.Context, typeNames []string, opts *GetRecordsOptions) ([]Record, error) {
	if len(typeNames) == 0 {
		return nil, newValidationError("at least one type name is required")
	}
	for _, t := range typeNames {
		if t == "" {
			return nil, newValidationError("type names must be non-empty")
		}
	}
	if opts == nil {
		opts = &GetRecordsOptions{}
	}

	start := time.Now()
	records, err := c.getRecords(ctx, typeNames, opts)
	c.observeOperation("get_records", c.cfg.Connection.Database, strings.Join(typeNames, ","),
		time.Since(start), err, int64(len(records)), nil)
	return records, err
}

func (c *Client) getRecords(ctx context.Context, typeNames []string, opts *GetRecordsOptions) ([]Record, error) {
	queryOpts := &QueryOptions{Session: opts.Session}

	if len(typeNames) == 1 {
		res, err := c.Query(ctx, "sql", selectStatement(typeNames[0], opts.Where, opts.Limit), queryOpts)
		if err != nil {
			return nil, err
		}
		return res.Records(), nil
	}

	res, err := c.Query(ctx, "sql", unionStatement(typeNames, opts.Where, opts.Limit), queryOpts)
	if err == nil {
		return res.Records(), nil
	}
	if !errors.Is(err, ErrQueryParsing) {
		return nil, err
	}

	c.logger.Debug("combined type query rejected, querying types individually", err,
		map[string]interface{}{"types": strings.Join(typeNames, ",")})

	// Per-type queries run concurrently; results land in input-type order
	// and are concatenated afterwards so the caller-visible order stays
	// identical to the combined form.
	perType := make([][]Record, len(typeNames))
	g, gctx := errgroup.WithContext(ctx)
	for i, typeName := range typeNames {
		g.Go(func() error {
			res, err := c.Query(gctx, "sql", selectStatement(typeName, opts.Where, opts.Limit), queryOpts)
			if err != nil {
				return err
			}
			perType[i] = res.Records()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []Record
	for _, rs := range perType {
		records = append(records, rs...)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

// unionStatement combines the per-type selections into one statement using
// the server's unionall function.
func unionStatement(typeNames []string, where string, limit int) string {
	lets := make([]string, 0, len(typeNames)+1)
	vars := make([]string, 0, len(typeNames))
	for i, typeName := range typeNames {
		v := fmt.Sprintf("$t%d", i)
		lets = append(lets, fmt.Sprintf("%s = (%s)", v, selectStatement(typeName, where, 0)))
		vars = append(vars, v)
	}
	lets = append(lets, fmt.Sprintf("$all = unionall(%s)", strings.Join(vars, ", ")))

	stmt := fmt.Sprintf("SELECT expand($all) LET %s", strings.Join(lets, ", "))
	if limit > 0 {
		stmt = fmt.Sprintf("%s LIMIT %d", stmt, limit)
	}
	return stmt
}

// GetTriplets fetches (subject, relation, object) hops over the graph.
// Empty filter slices mean "any type" for that position. The driver first
// attempts a single MATCH traversal; when the server rejects it, either
// because it cannot parse the pattern or because a filtered type does not
// exist in the schema, the traversal is decomposed into per-subject queries.
// Both strategies return hops in subject-major order and honour the limit.
func (c *Client) GetTriplets(ctx context.Context, subjectTypes, relationTypes, objectTypes []string, limit int) ([]Triplet, error) {
	if limit < 0 {
		return nil, newValidationError("limit must be non-negative")
	}

	start := time.Now()
	triplets, err := c.getTriplets(ctx, subjectTypes, relationTypes, objectTypes, limit)
	c.observeOperation("get_triplets", c.cfg.Connection.Database, strings.Join(subjectTypes, ","),
		time.Since(start), err, int64(len(triplets)), nil)
	return triplets, err
}

func (c *Client) getTriplets(ctx context.Context, subjectTypes, relationTypes, objectTypes []string, limit int) ([]Triplet, error) {
	res, err := c.Query(ctx, "sql", matchStatement(subjectTypes, relationTypes, objectTypes, limit), nil)
	if err == nil {
		return decodeTriplets(res.Records()), nil
	}
	if !errors.Is(err, ErrQueryParsing) && !errors.Is(err, ErrSchema) {
		return nil, err
	}

	c.logger.Debug("match traversal rejected, decomposing into per-subject queries", err, nil)
	return c.traverseTriplets(ctx, subjectTypes, relationTypes, objectTypes, limit)
}

// matchStatement builds the single-query MATCH traversal. Type filters are
// expressed as @type membership conditions on each pattern node so that any
// mix of vertex and edge types fits one pattern.
func matchStatement(subjectTypes, relationTypes, objectTypes []string, limit int) string {
	node := func(alias string, types []string) string {
		if len(types) == 0 {
			return fmt.Sprintf("{as: %s}", alias)
		}
		return fmt.Sprintf("{as: %s, where: (@type IN [%s])}", alias, quoteList(types))
	}

	stmt := fmt.Sprintf("MATCH %s.outE()%s.inV()%s RETURN subject, relation, object",
		node("subject", subjectTypes), node("relation", relationTypes), node("object", objectTypes))
	if limit > 0 {
		stmt = fmt.Sprintf("%s LIMIT %d", stmt, limit)
	}
	return stmt
}

// decodeTriplets lifts MATCH rows, which nest one map per alias, into
// Triplet values. Rows missing an alias are skipped.
func decodeTriplets(rows []Record) []Triplet {
	triplets := make([]Triplet, 0, len(rows))
	for _, row := range rows {
		subject, ok1 := asRecord(row["subject"])
		relation, ok2 := asRecord(row["relation"])
		object, ok3 := asRecord(row["object"])
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		triplets = append(triplets, Triplet{Subject: subject, Relation: relation, Object: object})
	}
	return triplets
}

func asRecord(v interface{}) (Record, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	return Record(m), true
}

// traverseTriplets is the decomposed fallback: enumerate subjects per type,
// then for each subject fetch its outgoing edges and resolve each edge's
// destination, filtering on the object types. Ordering is subject-major:
// all hops of one subject before any hop of the next, subjects in the order
// their types were given.
func (c *Client) traverseTriplets(ctx context.Context, subjectTypes, relationTypes, objectTypes []string, limit int) ([]Triplet, error) {
	if len(subjectTypes) == 0 {
		return nil, newValidationError("subject types are required for decomposed traversal")
	}

	var triplets []Triplet
	for _, subjectType := range subjectTypes {
		res, err := c.Query(ctx, "sql", selectStatement(subjectType, "", 0), nil)
		if err != nil {
			return nil, err
		}

		for _, subject := range res.Records() {
			if subject.RID() == "" {
				continue
			}
			hops, err := c.subjectHops(ctx, subject, relationTypes, objectTypes)
			if err != nil {
				return nil, err
			}
			triplets = append(triplets, hops...)
			if limit > 0 && len(triplets) >= limit {
				return triplets[:limit], nil
			}
		}
	}
	return triplets, nil
}

// subjectHops resolves one subject's outgoing edges to full triplets.
func (c *Client) subjectHops(ctx context.Context, subject Record, relationTypes, objectTypes []string) ([]Triplet, error) {
	edgeQuery := fmt.Sprintf("SELECT expand(outE(%s)) FROM %s", quoteList(relationTypes), subject.RID())
	res, err := c.Query(ctx, "sql", edgeQuery, nil)
	if err != nil {
		return nil, err
	}

	var hops []Triplet
	for _, edge := range res.Records() {
		destRID, _ := edge.GetString("@in")
		if destRID == "" {
			continue
		}
		destRes, err := c.Query(ctx, "sql", "SELECT FROM "+destRID, nil)
		if err != nil {
			return nil, err
		}
		for _, object := range destRes.Records() {
			if len(objectTypes) > 0 && !contains(objectTypes, object.TypeName()) {
				continue
			}
			hops = append(hops, Triplet{Subject: subject, Relation: edge, Object: object})
		}
	}
	return hops, nil
}
