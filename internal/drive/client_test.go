package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

func TestConvertToFileInfo(t *testing.T) {
	tests := []struct {
		name string
		file *drive.File
		want *FileInfo
	}{
		{
			name: "nil file",
			file: nil,
			want: nil,
		},
		{
			name: "basic file",
			file: &drive.File{
				Id:           "file123",
				Name:         "report.pdf",
				MimeType:     "application/pdf",
				Size:         2048,
				CreatedTime:  "2026-01-15T10:00:00Z",
				ModifiedTime: "2026-01-16T12:30:00Z",
				WebViewLink:  "https://drive.google.com/file/d/file123/view",
				Parents:      []string{"folder1"},
				Owners: []*drive.User{
					{EmailAddress: "owner@example.com"},
				},
			},
			want: &FileInfo{
				ID:           "file123",
				Name:         "report.pdf",
				MimeType:     "application/pdf",
				Size:         2048,
				CreatedTime:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
				ModifiedTime: time.Date(2026, 1, 16, 12, 30, 0, 0, time.UTC),
				WebViewLink:  "https://drive.google.com/file/d/file123/view",
				Parents:      []string{"folder1"},
				Owners:       []string{"owner@example.com"},
			},
		},
		{
			name: "file without timestamps",
			file: &drive.File{
				Id:   "file456",
				Name: "notes.txt",
			},
			want: &FileInfo{
				ID:   "file456",
				Name: "notes.txt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertToFileInfo(tt.file)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileInfoVariables(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	info := &FileInfo{
		ID:           "abc",
		Name:         "data.csv",
		MimeType:     "text/csv",
		Size:         512,
		CreatedTime:  created,
		ModifiedTime: modified,
		WebViewLink:  "https://drive.google.com/file/d/abc/view",
		Parents:      []string{"parent1"},
		Owners:       []string{"alice@example.com"},
	}

	vars := info.Variables()
	require.NotNil(t, vars)
	assert.Equal(t, "abc", vars["file_id"])
	assert.Equal(t, "data.csv", vars["name"])
	assert.Equal(t, "text/csv", vars["mime_type"])
	assert.Equal(t, int64(512), vars["size"])
	assert.Equal(t, "2026-02-01T09:00:00Z", vars["created_time"])
	assert.Equal(t, []string{"parent1"}, vars["parents"])
	assert.Equal(t, []string{"alice@example.com"}, vars["owners"])
}

func TestFileInfoVariablesNil(t *testing.T) {
	var info *FileInfo
	assert.Nil(t, info.Variables())
}

func TestIsFolder(t *testing.T) {
	assert.True(t, IsFolder(&FileInfo{MimeType: FolderMimeType}))
	assert.False(t, IsFolder(&FileInfo{MimeType: "text/plain"}))
	assert.False(t, IsFolder(nil))
}
