package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/comic"
)

// handleGetComicPage fetches one page and renders it as plain text.
func (s *Server) handleGetComicPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("page")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: page"), nil
	}

	n, err := comic.ParsePageNumber(raw)
	if err != nil {
		return mcp.NewToolResultError(comic.Describe(err)), nil
	}

	res, err := s.fetcher.Fetch(ctx, n)
	if err != nil {
		s.log.Debug("mcp page fetch failed", zap.Int("page", n), zap.Error(err))
		return mcp.NewToolResultError(comic.Describe(err)), nil
	}

	panel := request.GetInt("panel", -1)
	if panel >= len(res.Page.Panels) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Page %d has %d panel(s); panel %d does not exist.",
			res.PageNumber, len(res.Page.Panels), panel,
		)), nil
	}

	return mcp.NewToolResultText(FormatPage(res, panel)), nil
}

// handleListComicPages lists page numbers and titles.
func (s *Server) handleListComicPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.fetcher.(comic.Indexer).Index(ctx)
	if err != nil {
		return mcp.NewToolResultError(comic.Describe(err)), nil
	}
	if idx.TotalPages == 0 {
		return mcp.NewToolResultText("The comic has no pages."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d page(s):\n", idx.TotalPages)
	for i, title := range idx.Titles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, title)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// FormatPage renders a page as plain text. A negative panel renders every
// panel; otherwise only that one.
func FormatPage(res *comic.Result, panel int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page %d of %d: %s\n", res.PageNumber, res.TotalPages, res.Page.Title)

	if len(res.Page.Panels) == 0 {
		sb.WriteString("\n(This page has no panels.)\n")
		return sb.String()
	}

	for i, p := range res.Page.Panels {
		if panel >= 0 && i != panel {
			continue
		}
		fmt.Fprintf(&sb, "\n--- Panel %d ---\n", i+1)
		writePanel(&sb, p)
	}
	return sb.String()
}

func writePanel(sb *strings.Builder, p catalog.Panel) {
	if p.IsEmpty() {
		sb.WriteString("(empty panel)\n")
		return
	}
	for _, l := range p.Layers() {
		switch l.Kind {
		case catalog.LayerBackground:
			// Backgrounds are visual only.
		case catalog.LayerImage:
			fmt.Fprintf(sb, "Image: %s\n", l.Value)
		case catalog.LayerContent:
			sb.WriteString(strings.TrimSpace(l.Value))
			sb.WriteString("\n")
		case catalog.LayerNarration:
			fmt.Fprintf(sb, "Narration: %s\n", l.Value)
		case catalog.LayerDialogue:
			if l.Speaker != "" {
				fmt.Fprintf(sb, "%s: %q\n", l.Speaker, l.Value)
			} else {
				fmt.Fprintf(sb, "%q\n", l.Value)
			}
		}
	}
}
