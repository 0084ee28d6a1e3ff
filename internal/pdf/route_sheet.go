package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/denverparsonswork-debug/dockside-helper/internal/models"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateRouteSheet(customers []*models.Customer) ([]byte, error)
}

// RouteSheetGenerator — печатный лист справочника: водитель кладёт его
// в кабину на случай, когда связи нет.
type RouteSheetGenerator struct {
	fontName string
}

func NewRouteSheetGenerator() *RouteSheetGenerator {
	return &RouteSheetGenerator{fontName: "Helvetica"}
}

func (g *RouteSheetGenerator) GenerateRouteSheet(customers []*models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Dockside route sheet", false)
	pdf.SetAuthor("Dockside Helper", false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "ROUTE SHEET", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	sub := fmt.Sprintf("Customer directory as of %s", time.Now().Format("01/02/2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ===== Шапка таблицы
	g.tableHeader(pdf)

	pdf.SetFont(g.fontName, "", 10)
	for _, c := range customers {
		// перед разрывом страницы повторяем шапку
		if pdf.GetY() > 260 {
			pdf.AddPage()
			g.tableHeader(pdf)
			pdf.SetFont(g.fontName, "", 10)
		}
		pdf.CellFormat(45, 7, c.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, c.Address, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, c.Phone, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, c.GateNotes, "1", 1, "L", false, 0, "")
	}

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 8,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("route sheet output: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *RouteSheetGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.CellFormat(45, 7, "Customer", "1", 0, "L", true, 0, "")
	pdf.CellFormat(70, 7, "Address", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Phone", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Gate / dock notes", "1", 1, "L", true, 0, "")
}
