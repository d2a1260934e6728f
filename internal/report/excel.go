package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"beltflow/pkg/config"
	"beltflow/pkg/domain"
)

// ExcelGenerator генератор XLSX отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator(cfg config.ReportConfig) *ExcelGenerator {
	return &ExcelGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatXLSX
}

// Generate генерирует XLSX отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	g.writeSummarySheet(f, data)

	switch data.Result.Verdict {
	case domain.VerdictOK:
		if g.IncludeEdgeTable(data) {
			g.writeFlowsSheet(f, data)
		}
	case domain.VerdictInfeasible:
		g.writeDeficitSheet(f, data)
	}

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummarySheet(f *excelize.File, data *ReportData) {
	sheetName := "Summary"
	f.NewSheet(sheetName)

	// Стили
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	row := 1

	// Заголовок
	f.SetCellValue(sheetName, cellAddr("A", row), g.Title(data))
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("E", row))
	row += 2

	// Сеть
	if data.Problem != nil {
		f.SetCellValue(sheetName, cellAddr("A", row), "Network")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Nodes")
		f.SetCellValue(sheetName, cellAddr("B", row), len(data.Problem.TouchedNodes()))
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Edges")
		f.SetCellValue(sheetName, cellAddr("B", row), len(data.Problem.Edges))
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Sources")
		f.SetCellValue(sheetName, cellAddr("B", row), len(data.Problem.Sources))
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Sink")
		f.SetCellValue(sheetName, cellAddr("B", row), data.Problem.Sink)
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Capped Nodes")
		f.SetCellValue(sheetName, cellAddr("B", row), len(data.Problem.NodeCaps))
		row++

		f.SetCellValue(sheetName, cellAddr("A", row), "Total Supply")
		f.SetCellValue(sheetName, cellAddr("B", row), g.FormatBound(data.Problem.TotalSupply()))
		row += 2
	}

	// Результат
	f.SetCellValue(sheetName, cellAddr("A", row), "Result")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Status")
	f.SetCellValue(sheetName, cellAddr("B", row), data.Result.Verdict.String())
	row++

	switch data.Result.Verdict {
	case domain.VerdictOK:
		f.SetCellValue(sheetName, cellAddr("A", row), "Max Flow (per min)")
		f.SetCellValue(sheetName, cellAddr("B", row), data.Result.MaxFlowPerMin)
		row++

		if data.Stats != nil {
			f.SetCellValue(sheetName, cellAddr("A", row), "Active Edges")
			f.SetCellValue(sheetName, cellAddr("B", row), data.Stats.ActiveEdges)
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Forced Edges")
			f.SetCellValue(sheetName, cellAddr("B", row), data.Stats.ForcedEdges)
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Saturated Edges")
			f.SetCellValue(sheetName, cellAddr("B", row), data.Stats.SaturatedEdges)
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Average Utilization")
			f.SetCellValue(sheetName, cellAddr("B", row), g.FormatPercent(data.Stats.AverageUtilization))
			row++
		}

	case domain.VerdictInfeasible:
		if cert := data.Result.Certificate; cert != nil {
			f.SetCellValue(sheetName, cellAddr("A", row), "Demand Balance")
			f.SetCellValue(sheetName, cellAddr("B", row), cert.Deficit.DemandBalance)
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Reachable Nodes")
			f.SetCellValue(sheetName, cellAddr("B", row), len(cert.CutReachable))
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Tight Nodes")
			f.SetCellValue(sheetName, cellAddr("B", row), len(cert.Deficit.TightNodes))
			row++

			f.SetCellValue(sheetName, cellAddr("A", row), "Tight Edges")
			f.SetCellValue(sheetName, cellAddr("B", row), len(cert.Deficit.TightEdges))
			row++
		}

	case domain.VerdictError:
		f.SetCellValue(sheetName, cellAddr("A", row), "Error")
		f.SetCellValue(sheetName, cellAddr("B", row), g.ErrorMessage(data))
		row++
	}
	row++

	// Узкие места
	if len(data.Bottlenecks) > 0 {
		f.SetCellValue(sheetName, cellAddr("A", row), "Bottlenecks")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("E", row), headerStyle)
		row++

		headers := []string{"From", "To", "Utilization", "Impact Score", "Severity"}
		for i, h := range headers {
			f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), row), h)
		}
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("E", row), headerStyle)
		row++

		for _, bn := range data.Bottlenecks {
			f.SetCellValue(sheetName, cellAddr("A", row), bn.Edge.From)
			f.SetCellValue(sheetName, cellAddr("B", row), bn.Edge.To)
			f.SetCellValue(sheetName, cellAddr("C", row), bn.Utilization)
			f.SetCellValue(sheetName, cellAddr("D", row), bn.ImpactScore)
			f.SetCellValue(sheetName, cellAddr("E", row), bn.Severity.String())
			row++
		}
	}

	f.SetColWidth(sheetName, "A", "E", 18)
}

func (g *ExcelGenerator) writeFlowsSheet(f *excelize.File, data *ReportData) {
	sheetName := "Flows"
	f.NewSheet(sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	headers := []string{"From", "To", "Flow", "Lower", "Upper", "Utilization"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", "F1", headerStyle)

	bounds := edgeBounds(data.Problem)
	active := activeFlows(data.Result.Flows)
	limit := g.MaxTableRows()

	row := 2
	for i, fl := range active {
		if i >= limit {
			f.SetCellValue(sheetName, cellAddr("A", row), fmt.Sprintf("... and %d more rows", len(active)-limit))
			break
		}

		f.SetCellValue(sheetName, cellAddr("A", row), fl.From)
		f.SetCellValue(sheetName, cellAddr("B", row), fl.To)
		f.SetCellValue(sheetName, cellAddr("C", row), fl.Flow)

		if edge, ok := bounds[fl.Ref()]; ok {
			f.SetCellValue(sheetName, cellAddr("D", row), edge.Lower)
			if domain.IsUnbounded(edge.Upper) {
				f.SetCellValue(sheetName, cellAddr("E", row), "unbounded")
			} else {
				f.SetCellValue(sheetName, cellAddr("E", row), edge.Upper)
				if edge.Upper > domain.Epsilon {
					f.SetCellValue(sheetName, cellAddr("F", row), fl.Flow/edge.Upper)
				}
			}
		}
		row++
	}

	f.SetColWidth(sheetName, "A", "F", 15)
}

func (g *ExcelGenerator) writeDeficitSheet(f *excelize.File, data *ReportData) {
	cert := data.Result.Certificate
	if cert == nil {
		return
	}

	sheetName := "Deficit"
	f.NewSheet(sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	row := 1

	// Заголовок
	f.SetCellValue(sheetName, cellAddr("A", row), "Infeasibility Certificate")
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("D", row))
	row += 2

	f.SetCellValue(sheetName, cellAddr("A", row), "Demand Balance")
	f.SetCellValue(sheetName, cellAddr("B", row), cert.Deficit.DemandBalance)
	row += 2

	bounds := edgeBounds(data.Problem)

	// Рёбра насыщенного разреза
	if len(cert.Deficit.TightEdges) > 0 {
		f.SetCellValue(sheetName, cellAddr("A", row), "Saturated Cut Edges")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("D", row), headerStyle)
		row++

		headers := []string{"From", "To", "Lower", "Upper"}
		for i, h := range headers {
			f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), row), h)
		}
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("D", row), headerStyle)
		row++

		for _, ref := range cert.Deficit.TightEdges {
			f.SetCellValue(sheetName, cellAddr("A", row), ref.From)
			f.SetCellValue(sheetName, cellAddr("B", row), ref.To)
			if edge, ok := bounds[ref]; ok {
				f.SetCellValue(sheetName, cellAddr("C", row), edge.Lower)
				f.SetCellValue(sheetName, cellAddr("D", row), g.FormatBound(edge.Upper))
			}
			row++
		}
		row++
	}

	// Узлы с исчерпанной пропускной способностью
	if len(cert.Deficit.TightNodes) > 0 {
		f.SetCellValue(sheetName, cellAddr("A", row), "Saturated Node Caps")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
		row++

		for _, n := range cert.Deficit.TightNodes {
			f.SetCellValue(sheetName, cellAddr("A", row), n)
			if data.Problem != nil {
				if limit, ok := data.Problem.NodeCaps[n]; ok {
					f.SetCellValue(sheetName, cellAddr("B", row), limit)
				}
			}
			row++
		}
		row++
	}

	// Достижимая от источников часть разреза
	if len(cert.CutReachable) > 0 {
		f.SetCellValue(sheetName, cellAddr("A", row), "Reachable Side")
		f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("A", row), headerStyle)
		row++

		for _, n := range cert.CutReachable {
			f.SetCellValue(sheetName, cellAddr("A", row), n)
			row++
		}
	}

	f.SetColWidth(sheetName, "A", "D", 18)
}

// cellAddr формирует адрес ячейки
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
