package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/charity/internal/domain"
)

type institutionDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InstitutionIndex keeps institutions searchable by name and description.
type InstitutionIndex struct {
	Client    *elasticsearch.Client
	IndexName string
	// Refresh makes each write visible to the next search. Set by reindex.
	Refresh bool
}

func NewInstitutionIndex(client *elasticsearch.Client, index string) *InstitutionIndex {
	return &InstitutionIndex{Client: client, IndexName: index}
}

func (x *InstitutionIndex) Index(ctx context.Context, inst domain.Institution) error {
	body, err := json.Marshal(institutionDoc{ID: inst.ID, Name: inst.Name, Description: inst.Description})
	if err != nil {
		return err
	}

	opts := []func(*esapi.IndexRequest){
		x.Client.Index.WithContext(ctx),
		x.Client.Index.WithDocumentID(docID(inst.ID)),
	}
	if x.Refresh {
		opts = append(opts, x.Client.Index.WithRefresh("true"))
	}

	res, err := x.Client.Index(x.IndexName, bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("es: index institution %d: %w", inst.ID, err)
	}
	defer res.Body.Close()
	return responseError(res, "index institution")
}

func (x *InstitutionIndex) Remove(ctx context.Context, id uint) error {
	opts := []func(*esapi.DeleteRequest){x.Client.Delete.WithContext(ctx)}
	if x.Refresh {
		opts = append(opts, x.Client.Delete.WithRefresh("true"))
	}

	res, err := x.Client.Delete(x.IndexName, docID(id), opts...)
	if err != nil {
		return fmt.Errorf("es: delete institution %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return nil
	}
	return responseError(res, "delete institution")
}

func (x *InstitutionIndex) Search(ctx context.Context, q string, limit int) ([]domain.Institution, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery(q, limit)); err != nil {
		return nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := x.Client.Search(
		x.Client.Search.WithContext(ctx),
		x.Client.Search.WithIndex(x.IndexName),
		x.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError(res, "search"); err != nil {
		return nil, err
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source institutionDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("es: decode search: %w", err)
	}

	out := make([]domain.Institution, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, domain.Institution{
			ID:          hit.Source.ID,
			Name:        hit.Source.Name,
			Description: hit.Source.Description,
		})
	}
	return out, nil
}

func searchQuery(q string, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size": limit,
	}
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
