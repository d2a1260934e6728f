package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"beltflow/pkg/apperror"
	"beltflow/pkg/config"
	"beltflow/pkg/domain"
)

// Format формат отчёта
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat разбирает формат из строки запроса
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported report format %q", s), "format")
	}
}

// ContentType возвращает MIME-тип формата
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Extension возвращает расширение файла с точкой
func (f Format) Extension() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// Options переопределения оформления отчёта
type Options struct {
	Title            string
	Author           string
	Description      string
	IncludeEdgeTable bool
}

// ReportData данные для генерации отчёта
type ReportData struct {
	Options *Options

	// Исходная сеть и результат решения
	Problem *domain.Problem
	Result  domain.Result

	// Производные данные, заполняются только для успешного вердикта
	Stats       *domain.FlowStatistics
	Bottlenecks []*domain.BottleneckInfo
}

// NewData собирает данные отчёта по задаче и результату решения
func NewData(p *domain.Problem, res domain.Result, opts *Options) *ReportData {
	data := &ReportData{
		Options: opts,
		Problem: p,
		Result:  res,
	}
	if p != nil && res.Verdict == domain.VerdictOK {
		data.Stats = domain.CalculateFlowStatistics(p, res.Flows)
		data.Bottlenecks = domain.FindBottlenecks(p, res.Flows, domain.MediumUtilizationThreshold)
	}
	return data
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// Generators возвращает все генераторы, проиндексированные по формату
func Generators(cfg config.ReportConfig) map[Format]Generator {
	return map[Format]Generator{
		FormatXLSX: NewExcelGenerator(cfg),
		FormatPDF:  NewPDFGenerator(cfg),
	}
}

// defaultMaxTableRows предел строк таблицы, когда max_edges_in_table не задан
const defaultMaxTableRows = 30

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct {
	cfg config.ReportConfig
}

// Title возвращает заголовок отчёта
func (b *BaseGenerator) Title(data *ReportData) string {
	if data.Options != nil && data.Options.Title != "" {
		return data.Options.Title
	}
	return "Belt Network Feasibility Report"
}

// Author возвращает автора отчёта
func (b *BaseGenerator) Author(data *ReportData) string {
	if data.Options != nil && data.Options.Author != "" {
		return data.Options.Author
	}
	return b.CompanyName()
}

// Description возвращает описание
func (b *BaseGenerator) Description(data *ReportData) string {
	if data.Options != nil {
		return data.Options.Description
	}
	return ""
}

// CompanyName возвращает имя компании для шапки и футера
func (b *BaseGenerator) CompanyName() string {
	if b.cfg.CompanyName != "" {
		return b.cfg.CompanyName
	}
	return "BeltFlow"
}

// IncludeEdgeTable проверяет, нужна ли таблица потоков по рёбрам
func (b *BaseGenerator) IncludeEdgeTable(data *ReportData) bool {
	if data.Options == nil {
		return true
	}
	return data.Options.IncludeEdgeTable
}

// MaxTableRows возвращает предел строк таблицы
func (b *BaseGenerator) MaxTableRows() int {
	if b.cfg.MaxEdgesInTable > 0 {
		return b.cfg.MaxEdgesInTable
	}
	return defaultMaxTableRows
}

// FormatFloat форматирует число с заданной точностью
func (b *BaseGenerator) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatPercent форматирует процент
func (b *BaseGenerator) FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatBound форматирует границу пропускной способности
func (b *BaseGenerator) FormatBound(v float64) string {
	if domain.IsUnbounded(v) {
		return "unbounded"
	}
	return b.FormatFloat(v, 4)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ErrorMessage возвращает текст ошибки результата
func (b *BaseGenerator) ErrorMessage(data *ReportData) string {
	if data.Result.Err != nil {
		return data.Result.Err.Error()
	}
	return "unknown error"
}

// activeFlows отбирает рёбра с положительным потоком
func activeFlows(flows []domain.EdgeFlow) []domain.EdgeFlow {
	active := make([]domain.EdgeFlow, 0, len(flows))
	for _, f := range flows {
		if domain.IsPositive(f.Flow) {
			active = append(active, f)
		}
	}
	return active
}

// edgeBounds индексирует рёбра задачи по ссылке
func edgeBounds(p *domain.Problem) map[domain.EdgeRef]domain.Edge {
	if p == nil {
		return nil
	}
	bounds := make(map[domain.EdgeRef]domain.Edge, len(p.Edges))
	for _, e := range p.Edges {
		bounds[e.Ref()] = e
	}
	return bounds
}
