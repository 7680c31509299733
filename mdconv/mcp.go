package mdconv

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/notionconv/kit"
)

// RegisterMCP registers the conversion tools on an MCP server, so agents can
// drive extraction without the HTTP surface.
func (a *Assembler) RegisterMCP(srv *mcp.Server) {
	a.registerExtractTool(srv)
	a.registerChunkTool(srv)
	a.registerLabelsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- extract ---

type extractReq struct {
	FileName string `json:"file_name"`
	Markdown string `json:"markdown"`
	PageID   string `json:"page_id,omitempty"`
}

func (a *Assembler) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "notionconv_extract",
		Description: "Extract the video-transcript or lesson-text section from one Notion markdown page and return its records and report row.",
		InputSchema: inputSchema(map[string]any{
			"file_name": map[string]any{"type": "string", "description": "Exported file name (used for page id and title fallback)"},
			"markdown":  map[string]any{"type": "string", "description": "Raw markdown content"},
			"page_id":   map[string]any{"type": "string", "description": "Notion page id override"},
		}, []string{"file_name", "markdown"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*extractReq)
		recs, row := a.Assemble(r.FileName, r.Markdown, r.PageID)
		return map[string]any{"records": recs, "report": row}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- chunk ---

type chunkReq struct {
	Text    string `json:"text"`
	MaxLen  int    `json:"max_len,omitempty"`
	Overlap int    `json:"overlap,omitempty"`
}

func (a *Assembler) registerChunkTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "notionconv_chunk",
		Description: "Split text into overlapping chunks using the configured (or supplied) chunk geometry.",
		InputSchema: inputSchema(map[string]any{
			"text":    map[string]any{"type": "string", "description": "Text to split"},
			"max_len": map[string]any{"type": "integer", "description": "Chunk character budget"},
			"overlap": map[string]any{"type": "integer", "description": "Characters shared between consecutive chunks"},
		}, []string{"text"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*chunkReq)
		maxLen, overlap := a.cfg.ChunkMaxLen, a.cfg.ChunkOverlap
		if r.MaxLen > 0 {
			maxLen = r.MaxLen
		}
		if r.Overlap > 0 {
			overlap = r.Overlap
		}
		chunks := ChunkText(r.Text, maxLen, overlap)
		return map[string]any{"chunks": chunks, "count": len(chunks)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (any, error) {
		var r chunkReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- labels ---

func (a *Assembler) registerLabelsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "notionconv_labels",
		Description: "List the label lists and heading levels this converter matches against.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"video_labels":   a.cfg.VideoLabels,
			"lesson_labels":  a.cfg.LessonLabels,
			"heading_levels": a.cfg.HeadingLevels,
		}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (any, error) {
		return nil, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
