package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// DefaultVacancyIndex is the search index holding vacancy embeddings.
const DefaultVacancyIndex = "vacancies"

// knnNumCandidates is the per-shard candidate pool for approximate k-NN.
const knnNumCandidates = 500

var ErrSemanticUnavailable = errors.New("semantic index unavailable")

// SemanticIndex returns vacancy IDs ordered by embedding similarity.
// The pipeline treats any failure as a signal to fall back to recency.
type SemanticIndex interface {
	SimilarVacancyIDs(ctx context.Context, embedding []float32, k int) ([]string, error)
}

// ElasticsearchIndex is the Elasticsearch-backed SemanticIndex, using
// approximate k-NN over the dense_vector embedding field.
type ElasticsearchIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchIndex creates a SemanticIndex on the given index name.
// An empty index name uses DefaultVacancyIndex.
func NewElasticsearchIndex(client *elasticsearch.Client, index string) *ElasticsearchIndex {
	if index == "" {
		index = DefaultVacancyIndex
	}
	return &ElasticsearchIndex{client: client, index: index}
}

type knnHit struct {
	ID string `json:"_id"`
}

type knnResponse struct {
	Hits struct {
		Hits []knnHit `json:"hits"`
	} `json:"hits"`
}

// SimilarVacancyIDs runs the k-NN search and returns hit IDs in score
// order.
func (e *ElasticsearchIndex) SimilarVacancyIDs(ctx context.Context, embedding []float32, k int) ([]string, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", ErrSemanticUnavailable)
	}

	body := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   embedding,
			"k":              k,
			"num_candidates": knnNumCandidates,
		},
		"_source": false,
		"size":    k,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode knn query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSemanticUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", ErrSemanticUnavailable, res.Status())
	}

	var parsed knnResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode knn response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
