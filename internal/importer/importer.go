package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/localnerve/paperdb/internal/models"
	"github.com/xuri/excelize/v2"
)

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MaxRows bounds one import file, header excluded.
const MaxRows = 10000

// RoleSeparator separates several roles in one cell.
const RoleSeparator = "|"

var (
	ErrNoData        = errors.New("import file has no data rows (the first row is the header)")
	ErrTooManyRows   = fmt.Errorf("import file has more than %d data rows", MaxRows)
	ErrBadHeader     = errors.New("import file header is missing a required column")
	ErrUnknownFormat = errors.New("unknown import file format")
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ReadRows reads every row of a CSV file or of the first sheet of a workbook.
func ReadRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		return rows, nil

	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet: %w", err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// headerIndex maps normalized column names to their position. Names are
// lowercased with spaces and dashes folded to underscores.
func headerIndex(header []string, columns ...string) map[string]int {
	idx := make(map[string]int, len(columns))
	for _, c := range columns {
		idx[c] = -1
	}
	for i, h := range header {
		name := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(h)))
		if _, wanted := idx[name]; wanted && idx[name] < 0 {
			idx[name] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func checkSize(rows [][]string) error {
	if len(rows) < 2 {
		return ErrNoData
	}
	if len(rows)-1 > MaxRows {
		return ErrTooManyRows
	}
	return nil
}

// ParseAuthorIDs reads the author_id column, one paper per row, in file order.
// Blank rows are skipped.
func ParseAuthorIDs(rows [][]string) ([]string, error) {
	if err := checkSize(rows); err != nil {
		return nil, err
	}
	idx := headerIndex(rows[0], "author_id")
	if idx["author_id"] < 0 {
		return nil, fmt.Errorf("%w: author_id", ErrBadHeader)
	}

	var ids []string
	for _, row := range rows[1:] {
		if id := cell(row, idx["author_id"]); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoData
	}
	return ids, nil
}

// UserRow is one user read from an import file.
type UserRow struct {
	Row         int
	UserID      string
	Email       string
	DisplayName string
	Roles       []models.Role
}

// ParseUsers reads user rows. email is required; user_id, display_name and
// roles (separated by "|") are optional.
func ParseUsers(rows [][]string) ([]UserRow, error) {
	if err := checkSize(rows); err != nil {
		return nil, err
	}
	idx := headerIndex(rows[0], "user_id", "email", "display_name", "roles")
	if idx["email"] < 0 {
		return nil, fmt.Errorf("%w: email", ErrBadHeader)
	}

	var users []UserRow
	for i, row := range rows[1:] {
		item := UserRow{
			Row:         i + 2,
			UserID:      cell(row, idx["user_id"]),
			Email:       cell(row, idx["email"]),
			DisplayName: cell(row, idx["display_name"]),
		}
		if item.UserID == "" && item.Email == "" && item.DisplayName == "" {
			continue
		}
		if item.Email == "" {
			return nil, fmt.Errorf("row %d: email is required", item.Row)
		}
		if len(item.UserID) > models.MaxUserIDLength {
			return nil, fmt.Errorf("row %d: user_id is longer than %d characters", item.Row, models.MaxUserIDLength)
		}

		for _, r := range strings.Split(cell(row, idx["roles"]), RoleSeparator) {
			r = strings.ToUpper(strings.TrimSpace(r))
			if r == "" {
				continue
			}
			role := models.Role(r)
			if !role.Valid() {
				return nil, fmt.Errorf("row %d: unknown role %q", item.Row, r)
			}
			item.Roles = append(item.Roles, role)
		}
		users = append(users, item)
	}
	if len(users) == 0 {
		return nil, ErrNoData
	}
	return users, nil
}
