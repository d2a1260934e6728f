package factory

import (
	"encoding/json"
	"io"

	"beltflow/pkg/apperror"
	"beltflow/pkg/domain"
)

// Recipe один рецепт: машина, время крафта в секундах, входы и выходы
// предметов за один крафт
type Recipe struct {
	Machine string             `json:"machine"`
	TimeS   float64            `json:"time_s"`
	In      map[string]float64 `json:"in"`
	Out     map[string]float64 `json:"out"`
}

// Machine тип машины и её базовая скорость крафта
type Machine struct {
	CraftsPerMin float64 `json:"crafts_per_min"`
}

// ModuleEffect модули машины: speed ускоряет крафт, prod умножает выходы
type ModuleEffect struct {
	Speed float64 `json:"speed"`
	Prod  float64 `json:"prod"`
}

// Limits пределы плана. Ключи RawSupplyPerMin определяют сырьевые
// предметы; машина без записи в MaxMachines не ограничена.
type Limits struct {
	RawSupplyPerMin map[string]float64 `json:"raw_supply_per_min"`
	MaxMachines     map[string]float64 `json:"max_machines"`
}

// Target целевой предмет и требуемый темп производства
type Target struct {
	Item       string  `json:"item"`
	RatePerMin float64 `json:"rate_per_min"`
}

// Scenario полный сценарий планирования с провода
type Scenario struct {
	Recipes  map[string]Recipe       `json:"recipes"`
	Machines map[string]Machine      `json:"machines"`
	Modules  map[string]ModuleEffect `json:"modules"`
	Limits   Limits                  `json:"limits"`
	Target   Target                  `json:"target"`
}

type planOKDoc struct {
	Status           string             `json:"status"`
	PerRecipeCrafts  map[string]float64 `json:"per_recipe_crafts_per_min"`
	PerMachineCounts map[string]float64 `json:"per_machine_counts"`
	RawConsumption   map[string]float64 `json:"raw_consumption_per_min"`
}

type planInfeasibleDoc struct {
	Status          string   `json:"status"`
	MaxFeasibleRate float64  `json:"max_feasible_target_per_min"`
	BottleneckHint  []string `json:"bottleneck_hint"`
}

type planErrorDoc struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DecodeScenario читает один JSON-объект сценария
func DecodeScenario(r io.Reader) (*Scenario, error) {
	dec := json.NewDecoder(r)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "invalid scenario JSON")
	}
	if dec.More() {
		return nil, apperror.New(apperror.CodeInvalidInput, "trailing data after scenario JSON")
	}

	if s.Recipes == nil {
		s.Recipes = map[string]Recipe{}
	}
	if s.Machines == nil {
		s.Machines = map[string]Machine{}
	}
	if s.Modules == nil {
		s.Modules = map[string]ModuleEffect{}
	}
	if s.Limits.RawSupplyPerMin == nil {
		s.Limits.RawSupplyPerMin = map[string]float64{}
	}
	if s.Limits.MaxMachines == nil {
		s.Limits.MaxMachines = map[string]float64{}
	}
	return &s, nil
}

// MarshalPlan сериализует план в JSON с отступом в два пробела
func MarshalPlan(p Plan) ([]byte, error) {
	return json.MarshalIndent(planDoc(p), "", "  ")
}

// EncodePlan пишет план и завершающий перевод строки
func EncodePlan(w io.Writer, p Plan) error {
	data, err := MarshalPlan(p)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func planDoc(p Plan) any {
	switch p.Verdict {
	case domain.VerdictOK:
		doc := planOKDoc{
			Status:           "ok",
			PerRecipeCrafts:  p.PerRecipeCrafts,
			PerMachineCounts: p.PerMachineCounts,
			RawConsumption:   p.RawConsumption,
		}
		if doc.PerRecipeCrafts == nil {
			doc.PerRecipeCrafts = map[string]float64{}
		}
		if doc.PerMachineCounts == nil {
			doc.PerMachineCounts = map[string]float64{}
		}
		if doc.RawConsumption == nil {
			doc.RawConsumption = map[string]float64{}
		}
		return doc

	case domain.VerdictInfeasible:
		hints := p.Bottlenecks
		if hints == nil {
			hints = []string{}
		}
		return planInfeasibleDoc{
			Status:          "infeasible",
			MaxFeasibleRate: p.MaxFeasibleRate,
			BottleneckHint:  hints,
		}

	default:
		message := "unknown error"
		if p.Err != nil {
			message = p.Err.Error()
		}
		return planErrorDoc{
			Status:  "error",
			Message: message,
		}
	}
}
