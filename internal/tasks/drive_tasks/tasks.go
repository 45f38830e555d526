package drive_tasks

import (
	"fmt"

	"github.com/teemow/flowspace/internal/drive"
	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/google"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// getDriveClient retrieves or creates a Drive client for the specified account
func getDriveClient(account string, sc *server.ServerContext) (*drive.Client, error) {
	client := sc.DriveClientForAccount(account)
	if client == nil {
		if !drive.HasTokenForAccount(account) {
			authURL := google.GetAuthURLForAccount(account)
			return nil, fmt.Errorf("no Google OAuth token for account %q; authorize via %s and run 'flowspace auth' with the code", account, authURL)
		}
		return nil, fmt.Errorf("failed to create Drive client for account %s", account)
	}
	return client, nil
}

// Register adds all Drive tasks to the registry.
func Register(registry *engine.Registry, sc *server.ServerContext) error {
	tasks := []engine.Task{
		{
			Name:        "drive.upload",
			Description: "Upload a file to Google Drive",
			Func:        common.InstrumentedTask("drive.upload", instrumentation.ServiceDrive, instrumentation.OperationUpload, sc, uploadFile(sc)),
		},
		{
			Name:        "drive.download",
			Description: "Download the content of a Drive file",
			Func:        common.InstrumentedTask("drive.download", instrumentation.ServiceDrive, instrumentation.OperationDownload, sc, downloadFile(sc)),
		},
		{
			Name:        "drive.export",
			Description: "Export a Google Workspace document to another format",
			Func:        common.InstrumentedTask("drive.export", instrumentation.ServiceDrive, instrumentation.OperationExport, sc, exportFile(sc)),
		},
		{
			Name:        "drive.list",
			Description: "List or search files in Google Drive",
			Func:        common.InstrumentedTask("drive.list", instrumentation.ServiceDrive, instrumentation.OperationList, sc, listFiles(sc)),
		},
		{
			Name:        "drive.get",
			Description: "Get metadata of a Drive file",
			Func:        common.InstrumentedTask("drive.get", instrumentation.ServiceDrive, instrumentation.OperationGet, sc, getFile(sc)),
		},
		{
			Name:        "drive.delete",
			Description: "Delete a Drive file or folder",
			Func:        common.InstrumentedTask("drive.delete", instrumentation.ServiceDrive, instrumentation.OperationDelete, sc, deleteFile(sc)),
		},
		{
			Name:        "drive.create_folder",
			Description: "Create a folder in Google Drive",
			Func:        common.InstrumentedTask("drive.create_folder", instrumentation.ServiceDrive, instrumentation.OperationCreate, sc, createFolder(sc)),
		},
	}

	for _, task := range tasks {
		if err := registry.Register(task); err != nil {
			return fmt.Errorf("failed to register drive tasks: %w", err)
		}
	}
	return nil
}
