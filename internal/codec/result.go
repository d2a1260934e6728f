package codec

import (
	"encoding/json"
	"io"
	"math"

	"beltflow/pkg/domain"
)

type successDoc struct {
	Status        string            `json:"status"`
	MaxFlowPerMin float64           `json:"max_flow_per_min"`
	Flows         []domain.EdgeFlow `json:"flows"`
}

type infeasibleDoc struct {
	Status       string     `json:"status"`
	CutReachable []string   `json:"cut_reachable"`
	Deficit      deficitDoc `json:"deficit"`
}

type deficitDoc struct {
	DemandBalance float64          `json:"demand_balance"`
	TightNodes    []string         `json:"tight_nodes"`
	TightEdges    []domain.EdgeRef `json:"tight_edges"`
}

type errorDoc struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MarshalResult сериализует результат в JSON с отступом в два пробела
func MarshalResult(res domain.Result) ([]byte, error) {
	return json.MarshalIndent(resultDoc(res), "", "  ")
}

// EncodeResult пишет результат и завершающий перевод строки
func EncodeResult(w io.Writer, res domain.Result) error {
	data, err := MarshalResult(res)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func resultDoc(res domain.Result) any {
	switch res.Verdict {
	case domain.VerdictOK:
		flows := res.Flows
		if flows == nil {
			flows = []domain.EdgeFlow{}
		}
		return successDoc{
			Status:        "ok",
			MaxFlowPerMin: res.MaxFlowPerMin,
			Flows:         flows,
		}

	case domain.VerdictInfeasible:
		doc := infeasibleDoc{
			Status:       "infeasible",
			CutReachable: []string{},
			Deficit: deficitDoc{
				TightNodes: []string{},
				TightEdges: []domain.EdgeRef{},
			},
		}
		if cert := res.Certificate; cert != nil {
			if cert.CutReachable != nil {
				doc.CutReachable = cert.CutReachable
			}
			// json.Marshal отвергает бесконечность; неограниченный дефицит
			// печатается как наибольший конечный float64
			doc.Deficit.DemandBalance = clampFinite(cert.Deficit.DemandBalance)
			if cert.Deficit.TightNodes != nil {
				doc.Deficit.TightNodes = cert.Deficit.TightNodes
			}
			if cert.Deficit.TightEdges != nil {
				doc.Deficit.TightEdges = cert.Deficit.TightEdges
			}
		}
		return doc

	default:
		message := "unknown error"
		if res.Err != nil {
			message = res.Err.Error()
		}
		return errorDoc{
			Status:  "error",
			Message: message,
		}
	}
}

func clampFinite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
