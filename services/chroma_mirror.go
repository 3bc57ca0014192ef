package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github/itish2003/meetassist/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/google/uuid"
)

const mirrorSource = "meetassist"

// IndexMirror receives a copy of every chunk appended to the local index.
// Retrieval never reads from it.
type IndexMirror interface {
	Mirror(ctx context.Context, records []models.ChunkRecord, texts []string, vectors [][]float32) error
	Reset(ctx context.Context) error
}

// ChromaMirror writes chunks into a Chroma collection through the v2 API.
type ChromaMirror struct {
	client     chromago.Client
	collection chromago.Collection
}

// NewChromaMirror connects to the Chroma server at url and gets or creates
// the named collection.
func NewChromaMirror(ctx context.Context, url, collectionName string) (*ChromaMirror, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(url))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	log.Printf("CHROMA: Getting or creating collection '%s' at %s...", collectionName, url)
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Meeting transcript chunks"),
				chromago.NewStringAttribute("created_by", mirrorSource),
			),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get or create collection %s: %w", collectionName, err)
	}
	return &ChromaMirror{client: client, collection: collection}, nil
}

// Mirror adds one document per chunk. Document ids are unique per call, so
// ingesting the same meeting twice produces two copies, as in the local index.
func (m *ChromaMirror) Mirror(ctx context.Context, records []models.ChunkRecord, texts []string, vectors [][]float32) error {
	if len(records) != len(texts) || len(records) != len(vectors) {
		return fmt.Errorf("mirror batch has %d records, %d texts and %d vectors", len(records), len(texts), len(vectors))
	}
	batch := uuid.New().String()
	for i, rec := range records {
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", mirrorSource),
			chromago.NewIntAttribute("meeting_id", rec.MeetingID),
			chromago.NewIntAttribute("chunk_index", int64(rec.ChunkIndex)),
			chromago.NewStringAttribute("created_at", rec.CreatedAt.Format(time.RFC3339)),
		)
		docID := chromago.DocumentID(fmt.Sprintf("m%d-%s-chunk%d", rec.MeetingID, batch, rec.ChunkIndex))
		err := m.collection.Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(texts[i]),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vectors[i])),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %d of meeting %d to chromadb: %w", rec.ChunkIndex, rec.MeetingID, err)
		}
	}
	return nil
}

// Reset deletes every document this service has written.
func (m *ChromaMirror) Reset(ctx context.Context) error {
	where := chromago.EqString("source", mirrorSource)
	if err := m.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("failed to clear chroma collection: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (m *ChromaMirror) Count(ctx context.Context) (int, error) {
	count, err := m.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

func (m *ChromaMirror) Close() error {
	return m.client.Close()
}
