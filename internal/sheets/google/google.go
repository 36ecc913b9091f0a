// Package google exports recap digests to a Google spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"scadenze/internal/core"
	ports "scadenze/internal/sheets"

	"golang.org/x/oauth2"
	gauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	recapSheet    string
}

var _ ports.RecapExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client from the environment.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_RECAP_SHEET_NAME (default "Recaps").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	recapSheet := strings.TrimSpace(os.Getenv("GOOGLE_RECAP_SHEET_NAME"))
	if recapSheet == "" {
		recapSheet = "Recaps"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		recapSheet:    recapSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service. A user OAuth token (see
// cmd/oauth-init) takes precedence so personal spreadsheets work without
// sharing them with a service account; otherwise Service Account
// credentials from one of the supported environment variables are used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if opt, ok, err := userTokenOption(ctx); err != nil {
		return nil, err
	} else if ok {
		service, err := gsheet.NewService(ctx, opt)
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		slog.InfoContext(ctx, "Google Sheets service created", "auth", "oauth_token")
		return service, nil
	}

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "auth", "service_account")
	return service, nil
}

// userTokenOption builds a token-source option from GOOGLE_OAUTH_CLIENT_JSON
// / GOOGLE_OAUTH_CLIENT_FILE plus GOOGLE_OAUTH_TOKEN_JSON /
// GOOGLE_OAUTH_TOKEN_FILE. Returns ok=false when the pair is not configured.
func userTokenOption(ctx context.Context) (goption.ClientOption, bool, error) {
	clientJSON, err := envOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, false, err
	}
	tokenJSON, err := envOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, false, err
	}
	if clientJSON == nil || tokenJSON == nil {
		return nil, false, nil
	}

	cfg, err := gauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, false, fmt.Errorf("parse oauth client: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, false, fmt.Errorf("parse oauth token: %w", err)
	}

	return goption.WithTokenSource(cfg.TokenSource(ctx, &tok)), true, nil
}

func envOrFile(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileKey)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileKey, err)
		}
		return data, nil
	}
	return nil, nil
}

// AppendRecap writes one digest row below the sheet's current contents.
func (c *Client) AppendRecap(ctx context.Context, planName string, recap core.RecapSummary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.recapSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.recapSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:J%d", c.recapSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{RecapRow(planName, recap)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Recap row exported",
		"sheet", c.recapSheet,
		"row", nextRow,
		"plan", planName,
		"label", recap.Label)

	return dataRange, nil
}

// RecapRow flattens a recap into the exported column layout:
// label, plan, counts and amounts per bucket.
func RecapRow(planName string, r core.RecapSummary) []any {
	return []any{
		r.Label,
		planName,
		r.TotalCount,
		r.TotalAmount,
		r.PaidCount,
		r.PaidAmount,
		r.PartialCount + r.UnpaidCount,
		r.PartialAmount + r.UnpaidAmount,
		r.MissedDueCount,
		r.MissedDueAmount,
	}
}
