package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer uploads tables as tabs of a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.TableWriter = (*Writer)(nil)

// NewWriter authenticates against the Sheets API and returns a writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, common.ExternalServiceError("google sheets", err)
	}

	return NewWriterWithService(srv, config, logger), nil
}

// NewWriterWithService wraps an already constructed Sheets service.
func NewWriterWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{service: srv, config: config, logger: logger}
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
		if config.RefreshToken == "" {
			saved, err := LoadToken(config.TokenFile)
			if err != nil {
				return nil, fmt.Errorf("no refresh token configured and %s is unreadable: %w", config.TokenFile, err)
			}
			token = saved
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// WriteTable uploads table into a tab named title and returns the spreadsheet URL.
// When no spreadsheet ID is configured a new spreadsheet is created.
func (w *Writer) WriteTable(ctx context.Context, title string, table *model.Table) (string, error) {
	if table == nil {
		return "", common.ErrDataNotLoaded
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Logger:       w.logger,
	}

	var target sheetTarget
	err := common.Retry(ctx, "open sheet tab", retryOpts, func() error {
		var openErr error
		target, openErr = w.openTab(ctx, title)
		return classify(openErr)
	})
	if err != nil {
		return "", common.ExternalServiceError("google sheets", err)
	}

	values := tableValues(table)
	err = common.Retry(ctx, "write sheet values", retryOpts, func() error {
		return classify(w.writeValues(ctx, target, values))
	})
	if err != nil {
		return "", common.ExternalServiceError("google sheets", err)
	}

	if w.config.EnableFormatting {
		err = common.Retry(ctx, "format sheet", retryOpts, func() error {
			return classify(w.applyFormatting(ctx, target, len(table.Columns())))
		})
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("table mirrored to google sheets",
		"spreadsheet_id", target.spreadsheetID,
		"tab", target.title,
		"rows", len(values))

	return target.url, nil
}

// classify marks quota and server errors from the API as retryable.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return common.Transient(err)
		}
	}
	return err
}

type sheetTarget struct {
	spreadsheetID string
	url           string
	title         string
	sheetID       int64
}

// openTab adds a tab to the configured spreadsheet, or creates a spreadsheet
// holding a single tab.
func (w *Writer) openTab(ctx context.Context, title string) (sheetTarget, error) {
	if w.config.SpreadsheetID == "" {
		created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
			Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: title}}},
		}).Context(ctx).Do()
		if err != nil {
			return sheetTarget{}, fmt.Errorf("unable to create spreadsheet: %w", err)
		}

		target := sheetTarget{spreadsheetID: created.SpreadsheetId, url: created.SpreadsheetUrl, title: title}
		if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
			target.sheetID = created.Sheets[0].Properties.SheetId
		}
		w.logger.Info("created new spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
		return target, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return sheetTarget{}, fmt.Errorf("unable to add tab %q to spreadsheet %s: %w", title, w.config.SpreadsheetID, err)
	}

	target := sheetTarget{
		spreadsheetID: w.config.SpreadsheetID,
		url:           spreadsheetURL(w.config.SpreadsheetID),
		title:         title,
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		target.sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return target, nil
}

func spreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

func tableValues(table *model.Table) [][]any {
	values := make([][]any, 0, table.Len()+1)

	header := make([]any, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		header = append(header, col)
	}
	values = append(values, header)

	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values = append(values, cells)
	}
	return values
}

func (w *Writer) writeValues(ctx context.Context, target sheetTarget, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		rangeStr := fmt.Sprintf("'%s'!A%d", target.title, i+1)
		_, err := w.service.Spreadsheets.Values.Update(target.spreadsheetID, rangeStr, &sheets.ValueRange{
			Values: values[i:end],
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", end-i)
	}
	return nil
}

// applyFormatting bolds and freezes the header row and sizes the columns.
func (w *Writer) applyFormatting(ctx context.Context, target sheetTarget, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          target.sheetID,
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
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    target.sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        target.sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(target.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
