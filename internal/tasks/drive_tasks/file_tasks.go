package drive_tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/flowspace/internal/drive"
	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// maxInlineContent caps the bytes a download or export task pulls into the
// execution variables.
const maxInlineContent = 10 << 20

func uploadFile(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		name, err := common.RequiredString(in, "name")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		content := common.String(in, "content")

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		options := &drive.UploadOptions{
			MimeType:    common.String(in, "mime_type"),
			Description: common.String(in, "description"),
		}
		if parent := common.String(in, "parent_folder"); parent != "" {
			options.ParentFolders = []string{parent}
		}

		file, err := client.UploadFile(ctx, name, strings.NewReader(content), options)
		if err != nil {
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}
		return engine.Output(file.Variables()), nil
	}
}

func downloadFile(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		fileID, err := common.RequiredString(in, "file_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		body, err := client.DownloadFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to download file: %w", err)
		}
		defer body.Close()

		content, err := readInline(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read file content: %w", err)
		}
		return engine.Output{
			"file_id": fileID,
			"content": content,
			"size":    len(content),
		}, nil
	}
}

func exportFile(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		fileID, err := common.RequiredString(in, "file_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		mimeType, err := common.RequiredString(in, "mime_type")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		body, err := client.ExportFile(ctx, fileID, mimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to export file: %w", err)
		}
		defer body.Close()

		content, err := readInline(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read exported content: %w", err)
		}
		return engine.Output{
			"file_id":   fileID,
			"mime_type": mimeType,
			"content":   content,
			"size":      len(content),
		}, nil
	}
}

func listFiles(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		files, nextPageToken, err := client.ListFiles(ctx, &drive.ListOptions{
			Query:      common.String(in, "query"),
			MaxResults: int(common.Int64(in, "max_results", 0)),
			OrderBy:    common.String(in, "order_by"),
			PageToken:  common.String(in, "page_token"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		items := make([]map[string]any, len(files))
		for i, file := range files {
			items[i] = file.Variables()
		}
		out := engine.Output{"files": items, "count": len(items)}
		if nextPageToken != "" {
			out["next_page_token"] = nextPageToken
		}
		return out, nil
	}
}

func getFile(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		fileID, err := common.RequiredString(in, "file_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		file, err := client.GetFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to get file: %w", err)
		}
		return engine.Output(file.Variables()), nil
	}
}

func deleteFile(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		fileID, err := common.RequiredString(in, "file_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		if err := client.DeleteFile(ctx, fileID); err != nil {
			return nil, fmt.Errorf("failed to delete file: %w", err)
		}
		return engine.Output{"file_id": fileID, "deleted": true}, nil
	}
}

func createFolder(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		name, err := common.RequiredString(in, "name")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getDriveClient(account, sc)
		if err != nil {
			return nil, err
		}

		var parents []string
		if parent := common.String(in, "parent_folder"); parent != "" {
			parents = []string{parent}
		}

		folder, err := client.CreateFolder(ctx, name, parents)
		if err != nil {
			return nil, fmt.Errorf("failed to create folder: %w", err)
		}
		return engine.Output(folder.Variables()), nil
	}
}

func readInline(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInlineContent+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxInlineContent {
		return "", fmt.Errorf("content exceeds %d bytes", maxInlineContent)
	}
	return string(data), nil
}
