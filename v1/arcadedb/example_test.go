package arcadedb_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/arcadedb/v1/arcadedb"
	"github.com/Aleph-Alpha/arcadedb/v1/logger"
)

func Example() {
	log := logger.NewLogger(logger.Config{Level: logger.Info})

	client, err := arcadedb.NewClient(arcadedb.Config{
		Connection: arcadedb.Connection{
			Host:     "localhost",
			Username: "root",
			Password: "playwithdata",
			Database: "mydb",
		},
	}, log)
	if err != nil {
		if errors.Is(err, arcadedb.ErrLoginFailed) {
			fmt.Println("check the credentials")
		}
		return
	}
	defer client.Close()

	ctx := context.Background()
	res, err := client.Query(ctx, "sql", "SELECT FROM Person WHERE age > :age",
		&arcadedb.QueryOptions{Params: map[string]interface{}{"age": 30}, Limit: 10})
	if err != nil {
		return
	}
	for _, rec := range res.Records() {
		name, _ := rec.GetString("name")
		fmt.Println(name)
	}
}

func ExampleClient_ExecuteTransaction() {
	var client *arcadedb.Client // obtained from NewClient

	results, err := client.ExecuteTransaction(context.Background(), []string{
		"INSERT INTO Account SET iban = 'A', balance = 100",
		"UPDATE Account SET balance = balance - 10 WHERE iban = 'A'",
	}, &arcadedb.TransactionOptions{MaxRetries: 5})
	if err != nil {
		return
	}
	fmt.Println(len(results))
}

func ExampleClient_BulkInsert() {
	var client *arcadedb.Client // obtained from NewClient

	records := []map[string]interface{}{
		{"name": "ada", "born": 1815},
		{"name": "grace", "born": 1906},
	}
	inserted, err := client.BulkInsert(context.Background(), "Person", records, nil)
	if err != nil {
		var e *arcadedb.Error
		if errors.As(err, &e) {
			fmt.Printf("%d of %d records failed\n", e.FailedRecords, e.TotalRecords)
		}
		return
	}
	fmt.Println(inserted)
}
