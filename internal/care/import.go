package care

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"babycare-backend/internal/model"
	"babycare-backend/internal/parse"
	"babycare-backend/internal/store"
)

// maxReportedErrors caps the row errors returned by an import.
const maxReportedErrors = 3

// ImportReport summarises a CSV import.
type ImportReport struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// ImportDiaperCSV loads historical diaper changes from a CSV with the columns
// perfil, fecha (DD/MM/YYYY), hora (HH:MM), tipo, talla and notas. Rows that
// fail are reported and skipped; stock is not touched. Only the owner may
// import.
func (s *Service) ImportDiaperCSV(ctx context.Context, ownerID int64, r io.Reader) (*ImportReport, error) {
	if _, err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, invalid("cannot read CSV header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"perfil", "fecha", "hora"} {
		if _, ok := columns[required]; !ok {
			return nil, invalid("missing column %q", required)
		}
	}
	field := func(row []string, name string) string {
		if i, ok := columns[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	report := &ImportReport{Errors: []string{}}
	profiles := make(map[string]*model.Profile)
	var logs []model.DiaperLog
	fail := func(line int, err error) {
		report.Failed++
		if len(report.Errors) < maxReportedErrors {
			report.Errors = append(report.Errors, fmt.Sprintf("Fila %d: %v", line, err))
		}
	}

	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fail(line, err)
			continue
		}

		name := field(row, "perfil")
		p, ok := profiles[strings.ToLower(name)]
		if !ok {
			p, err = s.store.FindProfileByName(ctx, name)
			if errors.Is(err, store.ErrNotFound) {
				fail(line, fmt.Errorf("perfil %q no encontrado", name))
				continue
			}
			if err != nil {
				return nil, err
			}
			profiles[strings.ToLower(name)] = p
		}

		at, err := parse.DateTime(field(row, "fecha")+" "+field(row, "hora"), s.Location())
		if err != nil {
			fail(line, err)
			continue
		}

		notes := strings.TrimSpace(field(row, "notas") + " [Importado]")
		logs = append(logs, model.DiaperLog{
			ProfileID:  p.ID,
			ReporterID: &ownerID,
			Time:       at.UTC(),
			WasteType:  parse.WasteType(field(row, "tipo")),
			SizeLabel:  strings.ToUpper(field(row, "talla")),
			Notes:      notes,
		})
	}

	if err := s.store.ImportDiaperLogs(ctx, logs); err != nil {
		return nil, err
	}
	report.Imported = len(logs)
	log.Printf("Imported %d diaper logs (%d rows failed)", report.Imported, report.Failed)
	return report, nil
}
