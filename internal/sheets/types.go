package sheets

import (
	"fmt"

	sheets "google.golang.org/api/sheets/v4"
)

// SpreadsheetInfo contains metadata about a spreadsheet
type SpreadsheetInfo struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	URL    string      `json:"url,omitempty"`
	Sheets []SheetInfo `json:"sheets,omitempty"`
}

// SheetInfo describes one sheet tab inside a spreadsheet
type SheetInfo struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Index    int64  `json:"index"`
	RowCount int64  `json:"rowCount,omitempty"`
	ColCount int64  `json:"colCount,omitempty"`
}

// Variables returns the spreadsheet metadata as execution variables.
func (s *SpreadsheetInfo) Variables() map[string]any {
	if s == nil {
		return nil
	}
	vars := map[string]any{
		"spreadsheet_id": s.ID,
		"title":          s.Title,
		"url":            s.URL,
	}
	if len(s.Sheets) > 0 {
		titles := make([]string, len(s.Sheets))
		for i, sh := range s.Sheets {
			titles[i] = sh.Title
		}
		vars["sheet_titles"] = titles
	}
	return vars
}

// RangeData holds the values read from a range
type RangeData struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// WriteResult describes the outcome of a write or append
type WriteResult struct {
	Range        string `json:"range"`
	UpdatedRows  int64  `json:"updatedRows"`
	UpdatedCells int64  `json:"updatedCells"`
}

func toSpreadsheetInfo(ss *sheets.Spreadsheet) *SpreadsheetInfo {
	if ss == nil {
		return nil
	}

	info := &SpreadsheetInfo{
		ID:  ss.SpreadsheetId,
		URL: ss.SpreadsheetUrl,
	}
	if ss.Properties != nil {
		info.Title = ss.Properties.Title
	}
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		si := SheetInfo{
			ID:    sh.Properties.SheetId,
			Title: sh.Properties.Title,
			Index: sh.Properties.Index,
		}
		if sh.Properties.GridProperties != nil {
			si.RowCount = sh.Properties.GridProperties.RowCount
			si.ColCount = sh.Properties.GridProperties.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info
}

// toStringRows converts API cell values to string rows. The Sheets API
// returns cells as untyped values; everything is formatted with %v.
func toStringRows(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				cells[j] = ""
				continue
			}
			cells[j] = fmt.Sprintf("%v", cell)
		}
		rows[i] = cells
	}
	return rows
}

func toAnyRows(values [][]string) [][]any {
	rows := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		rows[i] = cells
	}
	return rows
}
