package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// QueryInput is the input schema for the query_records tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the board records"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"chunks to retrieve for the answer (0 uses the configured default)"`
}

// QueryOutput is the output schema for the query_records tool.
type QueryOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is one citation attached to an answer.
type SourceOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentType string  `json:"document_type"`
	Section      string  `json:"section,omitempty"`
	Relevance    float64 `json:"relevance"`
	Preview      string  `json:"preview,omitempty"`
}

// SearchInput is the input schema for the search_records tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar record chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum chunks to return (0 uses the configured default)"`
}

// SearchOutput is the output schema for the search_records tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is one retrieved chunk.
type ChunkOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentType string  `json:"document_type"`
	ClipID       string  `json:"clip_id,omitempty"`
	Section      string  `json:"section,omitempty"`
	Distance     float64 `json:"distance"`
	Content      string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_records",
		Description: "Answer a question about the board's meetings, citing the records the answer came from",
	}, s.handleQueryRecords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_records",
		Description: "Retrieve the closest indexed record chunks for a query without generating an answer",
	}, s.handleSearchRecords)
}

// handleQueryRecords handles the query_records tool invocation.
func (s *Server) handleQueryRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	answer, err := s.ports.Query.Query(ctx, input.Question, input.TopK, true)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{Answer: answer.Text}
	for _, c := range answer.Sources {
		output.Sources = append(output.Sources, SourceOutput{
			ChunkID:      c.ChunkID,
			DocumentType: string(c.DocumentType),
			Section:      c.Section,
			Relevance:    c.Relevance(),
			Preview:      c.Preview,
		})
	}

	return nil, output, nil
}

// handleSearchRecords handles the search_records tool invocation.
func (s *Server) handleSearchRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Query.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = ChunkOutput{
			ChunkID:      results[i].Chunk.ID,
			DocumentType: string(results[i].Chunk.Type),
			ClipID:       results[i].Chunk.ClipID,
			Section:      results[i].Chunk.Section,
			Distance:     results[i].Distance,
			Content:      results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}
