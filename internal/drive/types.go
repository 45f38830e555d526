package drive

import (
	"time"

	drive "google.golang.org/api/drive/v3"
)

// FileInfo contains metadata about a Google Drive file
type FileInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	MimeType       string    `json:"mimeType"`
	Size           int64     `json:"size,omitempty"`
	CreatedTime    time.Time `json:"createdTime"`
	ModifiedTime   time.Time `json:"modifiedTime"`
	WebViewLink    string    `json:"webViewLink,omitempty"`
	WebContentLink string    `json:"webContentLink,omitempty"`
	Parents        []string  `json:"parents,omitempty"`
	Owners         []string  `json:"owners,omitempty"`
	Trashed        bool      `json:"trashed"`
}

// Variables returns the file metadata as execution variables.
func (f *FileInfo) Variables() map[string]any {
	if f == nil {
		return nil
	}
	vars := map[string]any{
		"file_id":       f.ID,
		"name":          f.Name,
		"mime_type":     f.MimeType,
		"size":          f.Size,
		"created_time":  f.CreatedTime.Format(time.RFC3339),
		"modified_time": f.ModifiedTime.Format(time.RFC3339),
		"web_view_link": f.WebViewLink,
	}
	if len(f.Parents) > 0 {
		vars["parents"] = f.Parents
	}
	if len(f.Owners) > 0 {
		vars["owners"] = f.Owners
	}
	return vars
}

// UploadOptions contains options for uploading files
type UploadOptions struct {
	// ParentFolders are the IDs of parent folders for the file
	ParentFolders []string

	// Description is an optional description for the file
	Description string

	// MimeType overrides the detected MIME type
	MimeType string
}

// ListOptions contains options for listing files
type ListOptions struct {
	// Query is a Drive search query expression,
	// e.g. "name contains 'report'" or "'folderID' in parents"
	Query string

	// MaxResults limits the number of files returned per page
	MaxResults int

	// OrderBy specifies the sort order, e.g. "createdTime desc"
	OrderBy string

	// PageToken resumes a previous listing
	PageToken string
}

// convertToFileInfo converts a Drive API file to our FileInfo type
func convertToFileInfo(file *drive.File) *FileInfo {
	if file == nil {
		return nil
	}

	info := &FileInfo{
		ID:             file.Id,
		Name:           file.Name,
		MimeType:       file.MimeType,
		Size:           file.Size,
		WebViewLink:    file.WebViewLink,
		WebContentLink: file.WebContentLink,
		Parents:        file.Parents,
		Trashed:        file.Trashed,
	}

	if file.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, file.CreatedTime); err == nil {
			info.CreatedTime = t
		}
	}
	if file.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	for _, owner := range file.Owners {
		if owner != nil && owner.EmailAddress != "" {
			info.Owners = append(info.Owners, owner.EmailAddress)
		}
	}

	return info
}
