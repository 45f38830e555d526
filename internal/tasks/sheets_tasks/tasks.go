package sheets_tasks

import (
	"fmt"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/google"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/sheets"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// getSheetsClient retrieves or creates a Sheets client for the specified account
func getSheetsClient(account string, sc *server.ServerContext) (*sheets.Client, error) {
	client := sc.SheetsClientForAccount(account)
	if client == nil {
		if !sheets.HasTokenForAccount(account) {
			authURL := google.GetAuthURLForAccount(account)
			return nil, fmt.Errorf("no Google OAuth token for account %q; authorize via %s and run 'flowspace auth' with the code", account, authURL)
		}
		return nil, fmt.Errorf("failed to create Sheets client for account %s", account)
	}
	return client, nil
}

// Register adds all Sheets tasks to the registry.
func Register(registry *engine.Registry, sc *server.ServerContext) error {
	tasks := []engine.Task{
		{
			Name:        "sheets.get_spreadsheet",
			Description: "Get metadata of a spreadsheet including its sheet names",
			Func:        common.InstrumentedTask("sheets.get_spreadsheet", instrumentation.ServiceSheets, instrumentation.OperationGet, sc, getSpreadsheet(sc)),
		},
		{
			Name:        "sheets.read_range",
			Description: "Read a cell range as values, CSV or JSON",
			Func:        common.InstrumentedTask("sheets.read_range", instrumentation.ServiceSheets, instrumentation.OperationRead, sc, readRange(sc)),
		},
		{
			Name:        "sheets.write_range",
			Description: "Overwrite a cell range with values, CSV or JSON input",
			Func:        common.InstrumentedTask("sheets.write_range", instrumentation.ServiceSheets, instrumentation.OperationWrite, sc, writeRange(sc)),
		},
		{
			Name:        "sheets.append_range",
			Description: "Append rows after a table of data",
			Func:        common.InstrumentedTask("sheets.append_range", instrumentation.ServiceSheets, instrumentation.OperationWrite, sc, appendRange(sc)),
		},
		{
			Name:        "sheets.clear_range",
			Description: "Clear the values of a cell range",
			Func:        common.InstrumentedTask("sheets.clear_range", instrumentation.ServiceSheets, instrumentation.OperationDelete, sc, clearRange(sc)),
		},
	}

	for _, task := range tasks {
		if err := registry.Register(task); err != nil {
			return fmt.Errorf("failed to register sheets tasks: %w", err)
		}
	}
	return nil
}
