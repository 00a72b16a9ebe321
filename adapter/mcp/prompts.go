package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for reviewing tracked focus.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_review").
		Description("Review today's focus: score, where the time went and what is close to unlocking.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Focus Review", `Help me review my day. Please:

1. Read today's score from the kafeel://today resource
2. Read my level and streak from the kafeel://progress resource
3. Check the status.live tool to see what I am doing right now

Then tell me:
- how much of the day went to productive, neutral and distracting apps
- whether today already counts as a productive day for my streak
- how far I am from the next level and the next streak milestone

Keep it short and concrete.`), nil
		})

	srv.Prompt("weekly_review").
		Description("Review the current week: daily scores, the week score and personal records.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Focus Review", `Let's review my week. Please:

1. Read the daily scores from the kafeel://week resource
2. Get the week score with the focus.week tool
3. Compare against my personal records from kafeel://records

Help me see:
- my strongest and weakest day and their peak hours
- whether the week score can still beat my best week
- which distracting apps cost the most time (use category.list to check mappings)`), nil
		})

	srv.Prompt("categorize_apps").
		Description("Check how applications are categorized and suggest corrections.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Category Check", `Use the category.list tool with custom_only set to list my own overrides,
then the category.resolve tool for any app I mention.

Point out apps that look miscategorized and tell me the
"kafeel category set <app> <category>" command that fixes each one.`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
