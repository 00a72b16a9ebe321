package mcp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/kafeel/adapter/cli"
)

const (
	dateLayout   = "2006-01-02"
	jsonMimeType = "application/json"
)

var errNoService = errors.New("service not available")

// parseDay resolves an optional YYYY-MM-DD day; empty means fallback.
func parseDay(app *cli.App, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return cli.ParseDate(value, app.Location)
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: jsonMimeType,
		Text:     string(data),
	}, nil
}
