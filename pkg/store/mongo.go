package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
)

// DefaultMongoCollection holds one document per package.
const DefaultMongoCollection = "packages"

// Mongo stores packages in a MongoDB collection keyed by coordinate.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Type      string    `bson:"type"`
	Namespace string    `bson:"namespace"`
	Name      string    `bson:"name"`
	Version   string    `bson:"version"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// OpenMongo connects to uri and uses the packages collection of database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create index")
	}
	return &Mongo{client: client, coll: coll}, nil
}

func (m *Mongo) CreatePackage(ctx context.Context, p purl.PURL) (*meta.Package, error) {
	doc, err := newMongoDoc(meta.NewPackage(p))
	if err != nil {
		return nil, err
	}
	_, err = m.coll.UpdateOne(ctx,
		bson.M{"_id": doc.Key},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create %s", p.Key())
	}
	pkg, _, err := m.FindPackage(ctx, p)
	return pkg, err
}

func (m *Mongo) FindPackage(ctx context.Context, p purl.PURL) (*meta.Package, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": p.Key()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "find %s", p.Key())
	}
	pkg, err := decode([]byte(doc.Data))
	if err != nil {
		return nil, false, err
	}
	return pkg, true, nil
}

func (m *Mongo) FindPackages(ctx context.Context, f Filter) ([]*meta.Package, error) {
	q := bson.M{}
	if f.Type != "" {
		q["type"] = strings.ToLower(f.Type)
	}
	if f.Namespace != "" {
		q["namespace"] = f.Namespace
	}
	if f.Version != "" {
		q["version"] = f.Version
	}
	if f.Name != "" {
		q["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Name), "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(f.limit()))
	cur, err := m.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list packages")
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list packages")
	}

	out := make([]*meta.Package, 0, len(docs))
	for _, d := range docs {
		pkg, err := decode([]byte(d.Data))
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (m *Mongo) SavePackage(ctx context.Context, pkg *meta.Package) error {
	doc, err := newMongoDoc(pkg)
	if err != nil {
		return err
	}
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save %s", doc.Key)
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func newMongoDoc(pkg *meta.Package) (mongoDoc, error) {
	data, err := encode(pkg)
	if err != nil {
		return mongoDoc{}, err
	}
	p := pkg.PURL()
	return mongoDoc{
		Key:       p.Key(),
		Type:      p.Type,
		Namespace: p.Namespace,
		Name:      p.Name,
		Version:   p.Version,
		Data:      string(data),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

var _ Store = (*Mongo)(nil)
