package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"beltflow/pkg/config"
	"beltflow/pkg/domain"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator(cfg config.ReportConfig) *PDFGenerator {
	return &PDFGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	successColor   = &props.Color{Red: 39, Green: 174, Blue: 96}   // #27ae60
	warningColor   = &props.Color{Red: 243, Green: 156, Blue: 18}  // #f39c12
	dangerColor    = &props.Color{Red: 231, Green: 76, Blue: 60}   // #e74c3c
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	// Стили текста
	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	h3Style = props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Color: darkGrayColor,
		Top:   3,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// statusColor возвращает цвет вердикта
func statusColor(v domain.Verdict) *props.Color {
	switch v {
	case domain.VerdictOK:
		return successColor
	case domain.VerdictInfeasible:
		return warningColor
	default:
		return dangerColor
	}
}

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	cfg := marotocfg.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	// Заголовок документа
	g.addHeader(m, data)

	if data.Problem != nil {
		g.addNetworkContent(m, data.Problem)
	}

	// Содержимое в зависимости от вердикта
	switch data.Result.Verdict {
	case domain.VerdictOK:
		g.addSolutionContent(m, data)
	case domain.VerdictInfeasible:
		g.addCertificateContent(m, data)
	default:
		g.addErrorContent(m, data)
	}

	// Футер
	g.addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, g.Title(data), titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	// Метаданные
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", g.Author(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(time.Now())),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	if desc := g.Description(data); desc != "" {
		m.AddRow(5,
			text.NewCol(12, desc, smallStyle),
		)
	}

	m.AddRow(8) // Отступ
}

func (g *PDFGenerator) addNetworkContent(m core.Maroto, p *domain.Problem) {
	g.addSection(m, "Network")

	g.addMetricCards(m, []metricCard{
		{Label: "Nodes", Value: fmt.Sprintf("%d", len(p.TouchedNodes()))},
		{Label: "Edges", Value: fmt.Sprintf("%d", len(p.Edges))},
		{Label: "Sources", Value: fmt.Sprintf("%d", len(p.Sources))},
		{Label: "Capped Nodes", Value: fmt.Sprintf("%d", len(p.NodeCaps))},
	})

	m.AddRow(5)
	g.addKeyValueTable(m, []keyValue{
		{"Sink", p.Sink},
		{"Total Supply (per min)", g.FormatBound(p.TotalSupply())},
	})
}

func (g *PDFGenerator) addSolutionContent(m core.Maroto, data *ReportData) {
	g.addSection(m, "Solution")

	// Главные метрики
	g.addMetricCards(m, []metricCard{
		{Label: "Status", Value: data.Result.Verdict.String(), Color: statusColor(data.Result.Verdict)},
		{Label: "Max Flow (per min)", Value: g.FormatFloat(data.Result.MaxFlowPerMin, 4), Highlight: true},
	})

	if stats := data.Stats; stats != nil {
		m.AddRow(5)
		g.addKeyValueTable(m, []keyValue{
			{"Active Edges", fmt.Sprintf("%d", stats.ActiveEdges)},
			{"Forced Edges", fmt.Sprintf("%d", stats.ForcedEdges)},
			{"Saturated Edges", fmt.Sprintf("%d", stats.SaturatedEdges)},
			{"Unbounded Edges", fmt.Sprintf("%d", stats.UnboundedEdges)},
			{"Average Utilization", g.FormatPercent(stats.AverageUtilization)},
		})
	}

	// Таблица потоков по рёбрам
	if len(data.Result.Flows) > 0 && g.IncludeEdgeTable(data) {
		g.addSection(m, "Edge Flows")
		g.addFlowsTable(m, data)
	}

	// Узкие места
	if len(data.Bottlenecks) > 0 {
		g.addSection(m, "Bottlenecks")
		g.addBottlenecksTable(m, data.Bottlenecks)
	}
}

func (g *PDFGenerator) addCertificateContent(m core.Maroto, data *ReportData) {
	g.addSection(m, "Infeasibility Certificate")

	cert := data.Result.Certificate
	if cert == nil {
		m.AddRow(8,
			text.NewCol(12, "No certificate available", normalStyle),
		)
		return
	}

	g.addMetricCards(m, []metricCard{
		{Label: "Status", Value: data.Result.Verdict.String(), Color: statusColor(data.Result.Verdict)},
		{Label: "Demand Balance", Value: g.FormatFloat(cert.Deficit.DemandBalance, 4), Highlight: true},
	})

	m.AddRow(5)
	g.addKeyValueTable(m, []keyValue{
		{"Reachable Nodes", fmt.Sprintf("%d", len(cert.CutReachable))},
		{"Tight Nodes", fmt.Sprintf("%d", len(cert.Deficit.TightNodes))},
		{"Tight Edges", fmt.Sprintf("%d", len(cert.Deficit.TightEdges))},
	})

	if len(cert.Deficit.TightEdges) > 0 {
		m.AddRow(8)
		g.addSubSection(m, "Saturated Cut Edges")
		g.addTightEdgesTable(m, data, cert.Deficit.TightEdges)
	}

	if len(cert.Deficit.TightNodes) > 0 {
		m.AddRow(8)
		g.addSubSection(m, "Saturated Node Caps")
		m.AddRow(6,
			text.NewCol(12, strings.Join(cert.Deficit.TightNodes, ", "), normalStyle),
		)
	}
}

func (g *PDFGenerator) addErrorContent(m core.Maroto, data *ReportData) {
	g.addSection(m, "Solver Error")

	errStyle := normalStyle
	errStyle.Color = dangerColor
	m.AddRow(8,
		text.NewCol(12, g.ErrorMessage(data), errStyle),
	)
}

// === Вспомогательные методы ===

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
	Color     *props.Color
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}
		if card.Color != nil {
			valueStyle.Color = card.Color
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

type keyValue struct {
	Key   string
	Value string
}

func (g *PDFGenerator) addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func (g *PDFGenerator) addSubSection(m core.Maroto, title string) {
	m.AddRow(8,
		text.NewCol(12, title, h3Style),
	)
}

func (g *PDFGenerator) addFlowsTable(m core.Maroto, data *ReportData) {
	// Заголовок
	m.AddRow(8,
		text.NewCol(3, "From", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "To", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Flow", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Upper", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Utilization", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	bounds := edgeBounds(data.Problem)
	active := activeFlows(data.Result.Flows)
	limit := g.MaxTableRows()

	for i, fl := range active {
		if i >= limit {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(active)-limit), smallStyle),
			)
			break
		}

		upper := "-"
		utilization := "-"
		if edge, ok := bounds[fl.Ref()]; ok {
			upper = g.FormatBound(edge.Upper)
			if !domain.IsUnbounded(edge.Upper) && edge.Upper > domain.Epsilon {
				utilization = g.FormatPercent(fl.Flow / edge.Upper)
			}
		}

		m.AddRow(6,
			text.NewCol(3, fl.From, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, fl.To, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(fl.Flow, 4), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, upper, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, utilization, tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addBottlenecksTable(m core.Maroto, bottlenecks []*domain.BottleneckInfo) {
	// Заголовок
	m.AddRow(8,
		text.NewCol(3, "From", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "To", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Utilization", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Impact", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Severity", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for _, bn := range bottlenecks {
		severityStyle := tableCellTextStyle
		switch bn.Severity {
		case domain.SeverityCritical, domain.SeverityHigh:
			severityStyle.Color = dangerColor
		case domain.SeverityMedium:
			severityStyle.Color = warningColor
		case domain.SeverityLow:
			severityStyle.Color = successColor
		}

		m.AddRow(6,
			text.NewCol(3, bn.Edge.From, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, bn.Edge.To, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatPercent(bn.Utilization), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatFloat(bn.ImpactScore, 2), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, bn.Severity.String(), severityStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addTightEdgesTable(m core.Maroto, data *ReportData, refs []domain.EdgeRef) {
	// Заголовок
	m.AddRow(8,
		text.NewCol(3, "From", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "To", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Lower", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Upper", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	bounds := edgeBounds(data.Problem)
	limit := g.MaxTableRows()

	for i, ref := range refs {
		if i >= limit {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(refs)-limit), smallStyle),
			)
			break
		}

		lower := "-"
		upper := "-"
		if edge, ok := bounds[ref]; ok {
			lower = g.FormatFloat(edge.Lower, 4)
			upper = g.FormatBound(edge.Upper)
		}

		m.AddRow(6,
			text.NewCol(3, ref.From, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, ref.To, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, lower, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, upper, tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by %s | %s", g.CompanyName(), g.FormatTimestamp(time.Now())),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
