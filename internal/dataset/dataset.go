// Package dataset reads and writes the raw listings CSV.
//
// Expected columns (header names, case-insensitive): district, left (the
// property type; property_type is accepted too), area, age, room, salon,
// price. Extra columns are ignored. Empty or unparsable numeric cells become
// NaN so that downstream imputation and filtering can see them.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
	"github.com/OldStager01/housing-valuator/pkg/validation"
)

const (
	ColDistrict     = "district"
	ColPropertyType = "left"
	ColArea         = "area"
	ColAge          = "age"
	ColRoom         = "room"
	ColSalon        = "salon"
	ColPrice        = "price"
)

// RequiredColumns must be present in every raw dataset.
var RequiredColumns = []string{ColDistrict, ColPropertyType, ColArea, ColAge, ColRoom, ColSalon, ColPrice}

var header = RequiredColumns

var aliases = map[string]string{
	"property_type": ColPropertyType,
	"ilce":          ColDistrict,
	"m2":            ColArea,
	"yas":           ColAge,
	"oda":           ColRoom,
	"fiyat":         ColPrice,
}

// Read loads every row of the CSV at path. Any failure is a DataLoadError.
func Read(path string) ([]models.PropertyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataLoadError(path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, apperrors.NewDataLoadError(path, err)
	}
	return records, nil
}

// Decode parses listings from r.
func Decode(r io.Reader) ([]models.PropertyRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: file is empty")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(head))
	columns := make([]string, 0, len(head))
	for i, name := range head {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
		columns = append(columns, key)
	}

	var records []models.PropertyRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		records = append(records, models.PropertyRecord{
			District:        cell(row, index, ColDistrict),
			PropertyType:    cell(row, index, ColPropertyType),
			Area:            number(cell(row, index, ColArea)),
			BuildingAge:     number(cell(row, index, ColAge)),
			RoomCount:       number(cell(row, index, ColRoom)),
			LivingRoomCount: number(cell(row, index, ColSalon)),
			Price:           number(cell(row, index, ColPrice)),
		})
	}

	if err := validation.ValidateDataset(columns, len(records), RequiredColumns); err != nil {
		return nil, fmt.Errorf("csv: %v", err)
	}
	return records, nil
}

// Write creates (or truncates) the CSV at path with the canonical header.
func Write(path string, records []models.PropertyRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if err := Encode(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func Encode(w io.Writer, records []models.PropertyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.District,
			r.PropertyType,
			format(r.Area),
			format(r.BuildingAge),
			format(r.RoomCount),
			format(r.LivingRoomCount),
			format(r.Price),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func number(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func format(v float64) string {
	if models.Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
