package domain

import "sort"

// Verdict исход решения задачи
type Verdict int

const (
	VerdictUnspecified Verdict = iota
	VerdictOK
	VerdictInfeasible
	VerdictError
)

// String возвращает строковое представление исхода
func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictInfeasible:
		return "infeasible"
	case VerdictError:
		return "error"
	default:
		return "unspecified"
	}
}

// EdgeFlow поток на ребре исходной сети
type EdgeFlow struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Flow float64 `json:"flow"`
}

// Ref возвращает ссылку на ребро
func (f EdgeFlow) Ref() EdgeRef {
	return EdgeRef{From: f.From, To: f.To}
}

// Deficit описание нехватки потока в неосуществимом экземпляре
type Deficit struct {
	DemandBalance float64   `json:"demand_balance"`
	TightNodes    []string  `json:"tight_nodes"`
	TightEdges    []EdgeRef `json:"tight_edges"`
}

// Certificate сертификат неосуществимости: насыщенный разрез
// в терминах исходных узлов и рёбер
type Certificate struct {
	CutReachable []string `json:"cut_reachable"`
	Deficit      Deficit  `json:"deficit"`
}

// Result трёхзначный результат решения: успех, неосуществимость или ошибка.
// Ровно одно из полей Flows/Certificate/Err значимо в зависимости от Verdict.
type Result struct {
	Verdict       Verdict
	MaxFlowPerMin float64
	Flows         []EdgeFlow
	Certificate   *Certificate
	Err           error
}

// Success создаёт успешный результат с отсортированными потоками
func Success(maxFlowPerMin float64, flows []EdgeFlow) Result {
	if flows == nil {
		flows = []EdgeFlow{}
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Ref().Less(flows[j].Ref())
	})
	return Result{
		Verdict:       VerdictOK,
		MaxFlowPerMin: maxFlowPerMin,
		Flows:         flows,
	}
}

// Infeasible создаёт результат с сертификатом неосуществимости
func Infeasible(cert *Certificate) Result {
	return Result{
		Verdict:     VerdictInfeasible,
		Certificate: cert,
	}
}

// Failure создаёт результат-ошибку
func Failure(err error) Result {
	return Result{
		Verdict: VerdictError,
		Err:     err,
	}
}
