package sheets_tasks

import (
	"context"
	"fmt"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/sheets"
	"github.com/teemow/flowspace/internal/tasks/common"
)

func getSpreadsheet(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		spreadsheetID, err := common.RequiredString(in, "spreadsheet_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getSheetsClient(account, sc)
		if err != nil {
			return nil, err
		}

		info, err := client.GetSpreadsheet(ctx, spreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
		}
		return engine.Output(info.Variables()), nil
	}
}

func readRange(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		spreadsheetID, err := common.RequiredString(in, "spreadsheet_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		readRange, err := common.RequiredString(in, "range")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		format, err := sheets.ParseFormat(common.String(in, "format"))
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getSheetsClient(account, sc)
		if err != nil {
			return nil, err
		}

		data, err := client.ReadRange(ctx, spreadsheetID, readRange)
		if err != nil {
			return nil, fmt.Errorf("failed to read range: %w", err)
		}

		encoded, err := sheets.EncodeRows(format, data.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to encode range data: %w", err)
		}
		return engine.Output{
			"spreadsheet_id": spreadsheetID,
			"range":          data.Range,
			"format":         string(format),
			"values":         encoded,
			"row_count":      len(data.Values),
		}, nil
	}
}

func writeRange(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		return write(ctx, exec, in, sc, false)
	}
}

func appendRange(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		return write(ctx, exec, in, sc, true)
	}
}

func write(ctx context.Context, exec *engine.Execution, in engine.Input, sc *server.ServerContext, appendRows bool) (engine.Output, error) {
	account := common.Account(exec, in)

	spreadsheetID, err := common.RequiredString(in, "spreadsheet_id")
	if err != nil {
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}
	writeRange, err := common.RequiredString(in, "range")
	if err != nil {
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}
	format, err := sheets.ParseFormat(common.String(in, "format"))
	if err != nil {
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}
	inputOption, err := sheets.ParseInputOption(common.String(in, "input_option"))
	if err != nil {
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}

	raw, ok := in["values"]
	if !ok {
		return nil, engine.NewTaskError(fmt.Errorf("values is required")).WithType(engine.ErrorTypeUserError)
	}
	rows, err := sheets.DecodeRows(format, raw)
	if err != nil {
		return nil, engine.NewTaskError(fmt.Errorf("invalid values: %w", err)).WithType(engine.ErrorTypeUserError)
	}
	if len(rows) == 0 {
		return nil, engine.NewTaskError(fmt.Errorf("values must contain at least one row")).WithType(engine.ErrorTypeUserError)
	}

	client, err := getSheetsClient(account, sc)
	if err != nil {
		return nil, err
	}

	var result *sheets.WriteResult
	if appendRows {
		result, err = client.AppendRange(ctx, spreadsheetID, writeRange, rows, inputOption)
	} else {
		result, err = client.WriteRange(ctx, spreadsheetID, writeRange, rows, inputOption)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write range: %w", err)
	}

	return engine.Output{
		"spreadsheet_id": spreadsheetID,
		"range":          result.Range,
		"updated_rows":   result.UpdatedRows,
		"updated_cells":  result.UpdatedCells,
	}, nil
}

func clearRange(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		spreadsheetID, err := common.RequiredString(in, "spreadsheet_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		clearRange, err := common.RequiredString(in, "range")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getSheetsClient(account, sc)
		if err != nil {
			return nil, err
		}

		clearedRange, err := client.ClearRange(ctx, spreadsheetID, clearRange)
		if err != nil {
			return nil, fmt.Errorf("failed to clear range: %w", err)
		}
		return engine.Output{
			"spreadsheet_id": spreadsheetID,
			"range":          clearedRange,
			"cleared":        true,
		}, nil
	}
}
