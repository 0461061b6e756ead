package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/export"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
)

var _ service.TableWriter = (*Writer)(nil)

// Writer writes tables to one tab of a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a writer authenticated by service account or OAuth2 refresh token.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriterWithService(config, srv, logger), nil
}

func newWriterWithService(config Config, srv *sheets.Service, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}
}

// WriteRecords writes the flattened table of records and returns the spreadsheet id.
func (w *Writer) WriteRecords(ctx context.Context, records []*model.MetadataRecord) (string, error) {
	return w.WriteTable(ctx, export.FlatTable(records))
}

// WriteTable replaces the contents of the configured tab with table. The first
// row is treated as the header.
func (w *Writer) WriteTable(ctx context.Context, table [][]string) (string, error) {
	w.logger.Info("writing table to Google Sheets",
		"rows", len(table),
		"tab", w.config.Tab)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheet *sheets.Spreadsheet
	err := common.WithRetry(ctx, func() error {
		var getErr error
		spreadsheet, getErr = w.getOrCreateSpreadsheet(ctx)
		return getErr
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	spreadsheetID := spreadsheet.SpreadsheetId

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var tabErr error
		sheetID, tabErr = w.ensureTab(ctx, spreadsheet)
		return tabErr
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to prepare tab %q: %w", w.config.Tab, err)
	}

	err = common.WithRetry(ctx, func() error {
		return w.clearTab(ctx, spreadsheetID)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to clear tab: %w", err)
	}

	values := toValues(table)
	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting && len(table) > 0 {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetID, len(table[0]))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("table written",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return spreadsheetID, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := oauthClientConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet opens the configured spreadsheet or creates a new one
// holding the tab.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		spreadsheet, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return nil, classify(fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err))
		}
		return spreadsheet, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.Tab}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("unable to create spreadsheet: %w", err))
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later writes in this run reuse the new spreadsheet.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created, nil
}

// ensureTab returns the sheet id of the configured tab, adding the tab when missing.
func (w *Writer) ensureTab(ctx context.Context, spreadsheet *sheets.Spreadsheet) (int64, error) {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == w.config.Tab {
			return sheet.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: w.config.Tab}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, classify(fmt.Errorf("unable to add tab: %w", err))
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, common.Permanent(fmt.Errorf("add tab %q: empty reply", w.config.Tab))
	}

	w.logger.Debug("added tab", "tab", w.config.Tab)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// clearTab removes all values from the tab.
func (w *Writer) clearTab(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.cellRange("A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classify(err)
}

// writeData writes the values in BatchSize chunks.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.cellRange(fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return classify(fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err))
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header row and sizes the columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return classify(err)
}

// cellRange qualifies an A1 range with the quoted tab name.
func (w *Writer) cellRange(a1 string) string {
	return "'" + strings.ReplaceAll(w.config.Tab, "'", "''") + "'!" + a1
}

func toValues(table [][]string) [][]any {
	values := make([][]any, len(table))
	for i, row := range table {
		values[i] = make([]any, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

// classify marks Sheets API errors for WithRetry: 429 is a rate limit, 5xx is
// retried, other API errors are permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &common.RetryableError{Err: err, Retryable: true}
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return common.Permanent(err)
	}
}
