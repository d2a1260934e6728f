// Package codec translates flow problems and results between the JSON wire
// format and domain types. JSON has no literal for infinity, so an unbounded
// supply is written as null and an unbounded edge capacity as a null or
// omitted "upper".
package codec

import (
	"encoding/json"
	"io"

	"beltflow/pkg/apperror"
	"beltflow/pkg/domain"
)

// ProblemDoc форма задачи на проводе
type ProblemDoc struct {
	Sources  map[string]*float64 `json:"sources"`
	Sink     string              `json:"sink"`
	Edges    []EdgeDoc           `json:"edges"`
	NodeCaps map[string]float64  `json:"node_caps"`
}

// EdgeDoc ребро на проводе. Отсутствующий lower означает 0;
// отсутствующий или null upper означает отсутствие верхней границы.
type EdgeDoc struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Lower float64  `json:"lower"`
	Upper *float64 `json:"upper"`
}

// DecodeProblem читает один JSON-объект задачи
func DecodeProblem(r io.Reader) (*domain.Problem, error) {
	dec := json.NewDecoder(r)

	var doc ProblemDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "invalid problem JSON")
	}
	if dec.More() {
		return nil, apperror.New(apperror.CodeInvalidInput, "trailing data after problem JSON")
	}

	return doc.ToProblem(), nil
}

// ToProblem конвертирует wire-форму в доменную задачу
func (d *ProblemDoc) ToProblem() *domain.Problem {
	p := &domain.Problem{
		Sources:  make(map[string]float64, len(d.Sources)),
		Sink:     d.Sink,
		Edges:    make([]domain.Edge, 0, len(d.Edges)),
		NodeCaps: make(map[string]float64, len(d.NodeCaps)),
	}

	for name, supply := range d.Sources {
		if supply == nil {
			p.Sources[name] = domain.Infinity
		} else {
			p.Sources[name] = *supply
		}
	}

	for _, e := range d.Edges {
		upper := domain.Infinity
		if e.Upper != nil {
			upper = *e.Upper
		}
		p.Edges = append(p.Edges, domain.Edge{
			From:  e.From,
			To:    e.To,
			Lower: e.Lower,
			Upper: upper,
		})
	}

	for name, capacity := range d.NodeCaps {
		p.NodeCaps[name] = capacity
	}

	return p
}
