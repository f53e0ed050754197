package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gamma-omg/docqa/docstore"
	"github.com/gamma-omg/docqa/prompt"
)

type answerer interface {
	Answer(ctx context.Context, docID, question, rawExcerpt string) (prompt.Answer, error)
	AnswerGeneral(ctx context.Context, question string) (string, error)
	Retrieve(ctx context.Context, docID, question string) ([]docstore.Match, error)
}

type docResolver interface {
	Get(file string) (LedgerEntry, bool, error)
}

func NewQAServer(svc answerer, docs docResolver) *server.MCPServer {
	srv := server.NewMCPServer("DocQA", "0.1.0", server.WithToolCapabilities(false))

	ask := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question about an indexed document; the answer cites retrieved chunks as C1, C2, ..."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("file",
			mcp.Description("Path of the document to ask about; omit for a general question"),
		))
	srv.AddTool(ask, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		file := request.GetString("file", "")
		if file == "" {
			answer, err := svc.AnswerGeneral(ctx, question)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return mcp.NewToolResultText(answer), nil
		}

		entry, ok, err := docs.Get(file)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("document not indexed: %s", file)), nil
		}

		ans, err := svc.Answer(ctx, entry.DocID, question, entry.Excerpt)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		raw, err := json.Marshal(ans)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	retrieve := mcp.NewTool("retrieve",
		mcp.WithDescription("Search indexed documents and return the most similar chunks"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("file",
			mcp.Description("Restrict the search to one document"),
		))
	srv.AddTool(retrieve, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		docID := ""
		if file := request.GetString("file", ""); file != "" {
			entry, ok, err := docs.Get(file)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("document not indexed: %s", file)), nil
			}
			docID = entry.DocID
		}

		matches, err := svc.Retrieve(ctx, docID, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var response string
		for _, m := range matches {
			raw, err := json.Marshal(struct {
				ID    string  `json:"id"`
				DocID string  `json:"doc_id"`
				Seq   int     `json:"seq"`
				Score float32 `json:"score"`
				Text  string  `json:"text"`
			}{
				ID:    m.ID,
				DocID: m.DocumentID,
				Seq:   m.Seq,
				Score: m.Score,
				Text:  m.Text,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			response += fmt.Sprintf("%s\n", string(raw))
		}

		return mcp.NewToolResultText(response), nil
	})

	return srv
}
