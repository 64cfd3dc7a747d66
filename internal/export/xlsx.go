// Package export writes reviewed documents to spreadsheet files for
// downstream accounting systems.
package export

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dobby152/askelio-sub001/internal/model"
	"github.com/dobby152/askelio-sub001/internal/store"
)

// exportKeys is the column order for the summary sheet. Fields outside
// this set land on the detail sheet only.
var exportKeys = []string{
	"invoice_number",
	"vendor.name",
	"vendor.ico",
	"vendor.dic",
	"customer.name",
	"customer.ico",
	"date",
	"due_date",
	"subtotal",
	"tax",
	"total_amount",
	"currency",
	"variable_symbol",
}

// WriteXLSX exports completed documents to path. It returns the number of
// documents written.
func WriteXLSX(ctx context.Context, docs store.Store, path string) (int, error) {
	completed, err := docs.ListDocuments(ctx, store.Filter{Status: model.StatusCompleted})
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()

	summary, err := file.AddSheet("Invoices")
	if err != nil {
		return 0, eris.Wrap(err, "export: add summary sheet")
	}
	header := summary.AddRow()
	header.AddCell().SetString("document_id")
	for _, key := range exportKeys {
		header.AddCell().SetString(key)
	}

	detail, err := file.AddSheet("Fields")
	if err != nil {
		return 0, eris.Wrap(err, "export: add detail sheet")
	}
	detailHeader := detail.AddRow()
	for _, col := range []string{"document_id", "field_id", "key", "label", "value", "confidence", "source", "enriched"} {
		detailHeader.AddCell().SetString(col)
	}

	for _, doc := range completed {
		row := summary.AddRow()
		row.AddCell().SetString(doc.ID)
		for _, key := range exportKeys {
			cell := row.AddCell()
			if f := doc.FieldByKey(key); f != nil {
				cell.SetString(f.Value)
			}
		}

		for _, f := range doc.Fields {
			dr := detail.AddRow()
			dr.AddCell().SetString(doc.ID)
			dr.AddCell().SetString(f.ID)
			dr.AddCell().SetString(f.Key)
			dr.AddCell().SetString(f.Label)
			dr.AddCell().SetString(f.Value)
			dr.AddCell().SetFloat(f.Confidence)
			dr.AddCell().SetString(f.SourceProvider)
			dr.AddCell().SetBool(f.Enriched)
		}
	}

	if err := file.Save(path); err != nil {
		return 0, eris.Wrap(err, "export: save file")
	}
	return len(completed), nil
}
