package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"naffles.com/pointsbackend/internal/modules/admin/dto"
	userRepo "naffles.com/pointsbackend/internal/modules/user/repository"
)

// Expected CSV header for bulk manual crediting.
var bulkCreditHeader = []string{"Type", "Type Value", "Points Value"}

// identifier aliases accepted in the Type column, normalized to the lookup
// keys used by the user repository.
var identifierAliases = map[string]string{
	"wallet_address":   userRepo.IdentifierWallet,
	"wallet":           userRepo.IdentifierWallet,
	"twitter_username": userRepo.IdentifierTwitter,
	"twitter":          userRepo.IdentifierTwitter,
	"discord_username": userRepo.IdentifierDiscord,
	"discord":          userRepo.IdentifierDiscord,
}

// ParseBulkCreditCSV reads the manual-credit sheet. Malformed rows are
// returned as errors keyed by line number alongside the good rows, so a
// typo on line 40 never throws away the other 39.
func ParseBulkCreditCSV(r io.Reader) ([]dto.BulkCreditRow, []dto.BulkCreditRowResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}

	var (
		rows    []dto.BulkCreditRow
		badRows []dto.BulkCreditRowResult
	)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			badRows = append(badRows, dto.BulkCreditRowResult{
				Line:  line,
				Error: err.Error(),
			})
			continue
		}

		row, err := parseRow(line, record)
		if err != nil {
			badRows = append(badRows, dto.BulkCreditRowResult{
				Line:       line,
				Identifier: strings.Join(record, ","),
				Error:      err.Error(),
			})
			continue
		}
		rows = append(rows, row)
	}

	return rows, badRows, nil
}

func checkHeader(header []string) error {
	if len(header) != len(bulkCreditHeader) {
		return fmt.Errorf("expected header %q, got %d columns", strings.Join(bulkCreditHeader, ","), len(header))
	}
	for i, want := range bulkCreditHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("expected header column %d to be %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseRow(line int, record []string) (dto.BulkCreditRow, error) {
	if len(record) != 3 {
		return dto.BulkCreditRow{}, fmt.Errorf("expected 3 columns, got %d", len(record))
	}

	idType, ok := identifierAliases[strings.ToLower(strings.TrimSpace(record[0]))]
	if !ok {
		return dto.BulkCreditRow{}, fmt.Errorf("unknown identifier type %q", record[0])
	}

	identifier := strings.TrimSpace(record[1])
	if identifier == "" {
		return dto.BulkCreditRow{}, fmt.Errorf("empty identifier")
	}

	points, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return dto.BulkCreditRow{}, fmt.Errorf("invalid points value %q", record[2])
	}
	if points <= 0 {
		return dto.BulkCreditRow{}, fmt.Errorf("points value must be positive, got %d", points)
	}

	return dto.BulkCreditRow{
		Line:           line,
		IdentifierType: idType,
		Identifier:     identifier,
		Points:         points,
	}, nil
}
