package mcp

import "github.com/mark3labs/mcp-go/mcp"

// getComicPageTool defines the get_comic_page MCP tool.
var getComicPageTool = mcp.NewTool("get_comic_page",
	mcp.WithDescription("Get one page of the comic as text: its title and every panel's narration, dialogue, and content."),
	mcp.WithString("page",
		mcp.Required(),
		mcp.Description("1-based page number, written as decimal digits"),
	),
	mcp.WithNumber("panel",
		mcp.Description("Only return this 0-based panel (default: all panels)"),
	),
)

// listComicPagesTool defines the list_comic_pages MCP tool.
var listComicPagesTool = mcp.NewTool("list_comic_pages",
	mcp.WithDescription("List every page of the comic with its number and title."),
)
