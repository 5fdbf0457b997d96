//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BOMBASE_MONGO_URL")
	if uri == "" {
		t.Skip("BOMBASE_MONGO_URL not set")
	}
	ctx := context.Background()
	db := "bombase_test_" + uuid.NewString()[:8]
	s, err := OpenMongo(ctx, uri, db)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		s.client.Database(db).Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}
