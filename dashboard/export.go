package dashboard

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/xuri/excelize/v2"
)

const (
	ExportSheet    = "Registrations"
	ExportFileName = "ideathon-registrations.xlsx"
	ExportMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []string{
	"S.No", "Role", "Name", "Email", "Mobile", "Institute", "Team Name", "Team Size", "Topic", "Idea Description",
}

// Rows lays the roster out for export: each leader row followed by its member rows.
func Rows(roster []users.User) [][]string {
	rows := make([][]string, 0, len(roster)*2)
	for i := range roster {
		u := &roster[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			"Leader",
			u.Name,
			u.Email,
			u.Mobile,
			u.Institute,
			u.TeamName,
			strconv.Itoa(u.TeamSize()),
			u.Topic,
			u.IdeaDescription,
		})
		for _, m := range u.TeamMembers {
			rows = append(rows, []string{"", "Member", m.Name, m.Email, m.Mobile, "", "", "", "", ""})
		}
	}
	return rows
}

// Export writes the roster as an xlsx workbook with a header row.
func Export(w io.Writer, roster []users.User) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("[dashboard Export] new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("[dashboard Export] drop default sheet: %w", err)
	}

	all := append([][]string{exportHeader}, Rows(roster)...)
	for r, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("[dashboard Export] cell name: %w", err)
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			return fmt.Errorf("[dashboard Export] row %d: %w", r+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("[dashboard Export] write: %w", err)
	}
	return nil
}
