// Package qdrant provides a Qdrant vector database driver over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/papercomputeco/repomem/pkg/vector"
)

const (
	payloadID   = "id"
	payloadText = "text"
)

// pointNamespace derives stable point UUIDs from collection and record IDs,
// since Qdrant only accepts integers and UUIDs as point IDs.
var pointNamespace = uuid.MustParse("6f1c3b5e-2a4d-4c8e-9b7a-5d2e8f0a1c3b")

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Address is the Qdrant gRPC address (e.g., "localhost:6334").
	Address string

	// Dimensions is the vector size of collections created by the driver.
	Dimensions uint
}

// Driver implements vector.Driver using Qdrant's gRPC API. Each repomem
// collection maps to a Qdrant collection of the same name.
type Driver struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	dimensions  uint
	logger      *slog.Logger

	mu    sync.Mutex
	ready map[string]bool
}

// NewDriver creates a Qdrant-backed driver. The connection is established
// lazily on first use.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Address == "" {
		return nil, errors.New("qdrant address is required")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("qdrant embedding dimensions cannot be 0, must be configured")
	}

	conn, err := grpc.NewClient(c.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant connect: %v", vector.ErrConnection, err)
	}

	logger.Info("qdrant vector driver initialized",
		"address", c.Address,
		"dimensions", c.Dimensions,
	)

	return newDriver(conn, pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), c.Dimensions, logger), nil
}

func newDriver(conn *grpc.ClientConn, points pb.PointsClient, collections pb.CollectionsClient, dimensions uint, logger *slog.Logger) *Driver {
	return &Driver{
		conn:        conn,
		points:      points,
		collections: collections,
		dimensions:  dimensions,
		logger:      logger,
		ready:       make(map[string]bool),
	}
}

// ensureCollection creates the named collection with cosine distance unless
// it already exists.
func (d *Driver) ensureCollection(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready[name] {
		return nil
	}

	exists, err := d.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: name})
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", name, err)
	}

	if !exists.GetResult().GetExists() {
		_, err := d.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: name,
			VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(d.dimensions),
					Distance: pb.Distance_Cosine,
				},
			}},
		})
		if err != nil {
			return fmt.Errorf("creating collection %q: %w", name, err)
		}
		d.logger.Info("created qdrant collection", "collection", name)
	}

	d.ready[name] = true
	return nil
}

// PointID returns the Qdrant point UUID of a record.
func PointID(collection, id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"\x00"+id)).String()
}

// Upsert stores documents as points, keeping the record ID and text in the
// payload.
func (d *Driver) Upsert(ctx context.Context, collection string, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	if err := d.ensureCollection(ctx, collection); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(collection, doc.ID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: doc.Embedding}}},
			Payload: map[string]*pb.Value{
				payloadID:   {Kind: &pb.Value_StringValue{StringValue: doc.ID}},
				payloadText: {Kind: &pb.Value_StringValue{StringValue: doc.Text}},
			},
		}
	}

	wait := true
	if _, err := d.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("upserted points to qdrant",
		"collection", collection,
		"count", len(docs),
	)

	return nil
}

// Query searches the named collection. Qdrant reports cosine similarity as
// the score.
func (d *Driver) Query(ctx context.Context, collection string, embedding []float32, topK int, minScore float32) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	exists, err := d.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: collection})
	if err != nil {
		return nil, fmt.Errorf("checking collection %q: %w", collection, err)
	}
	if !exists.GetResult().GetExists() {
		return nil, nil
	}

	threshold := minScore
	resp, err := d.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		ScoreThreshold: &threshold,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:   pt.GetPayload()[payloadID].GetStringValue(),
				Text: pt.GetPayload()[payloadText].GetStringValue(),
			},
			Score: pt.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		"collection", collection,
		"results", len(results),
	)

	return results, nil
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

var _ vector.Driver = (*Driver)(nil)
