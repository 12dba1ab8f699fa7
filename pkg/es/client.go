// Package es 提供了基于 Elasticsearch 的向量存储客户端。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"finreport-rag-go/internal/config"
	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Client 封装了一个长生命周期的 Elasticsearch 客户端和向量索引名。
// 进程启动时创建一次并注入，底层客户端按其自身契约并发安全。
type Client struct {
	es        *elasticsearch.Client
	indexName string
}

// SearchHit 是一次相似度检索的单条命中结果。
type SearchHit struct {
	Document model.EsDocument
	Score    float64
}

// New 初始化 Elasticsearch 客户端，并在向量索引缺失时按映射创建。
func New(esCfg config.ElasticsearchConfig) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		APIKey:    esCfg.APIKey,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{es: esClient, indexName: esCfg.IndexName}
	if err := c.createIndexIfNotExists(esCfg); err != nil {
		return nil, err
	}
	return c, nil
}

// createIndexIfNotExists 检查向量索引是否存在，不存在则按配置的维度和相似度函数创建。
func (c *Client) createIndexIfNotExists(esCfg config.ElasticsearchConfig) error {
	res, err := c.es.Indices.Exists([]string{c.indexName})
	if err != nil {
		return fmt.Errorf("检查索引是否存在时出错: %w", err)
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"vector_id": { "type": "keyword" },
				"file_name": { "type": "keyword" },
				"page": { "type": "integer" },
				"chunk_id": { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "%s"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, esCfg.Dims, esCfg.Similarity)

	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("创建索引 '%s' 失败: %w", c.indexName, err)
	}
	if res.IsError() {
		return fmt.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", c.indexName, res.String())
	}

	log.Infof("索引 '%s' 创建成功", c.indexName)
	return nil
}

// IndexChunk 将单个分块文档写入向量索引。
// 不做任何去重：重复摄取同一文档会产生重复行。
func (c *Client) IndexChunk(ctx context.Context, doc model.EsDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      c.indexName,
		DocumentID: doc.VectorID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// Search 对整个索引执行纯 k 近邻检索，按相似度得分降序返回至多 k 条结果。
// 检索跨全部已摄取文档（单租户行为），不做按文档过滤。
func (c *Client) Search(ctx context.Context, queryVector []float32, k int) ([]SearchHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildKnnQuery(queryVector, k)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsDocument `json:"_source"`
				Score  float64          `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]SearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		hits = append(hits, SearchHit{Document: hit.Source, Score: hit.Score})
	}
	log.Infof("[VectorStore] knn 检索完成, k: %d, 命中: %d", k, len(hits))
	return hits, nil
}

// buildKnnQuery 构建纯 knn 查询体。
func buildKnnQuery(queryVector []float32, k int) map[string]interface{} {
	return map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   queryVector,
			"k":              k,
			"num_candidates": k * 30,
		},
		"size": k,
	}
}
