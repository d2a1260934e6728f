// Команда factory подбирает производственную цепочку под целевой темп
// выпуска предмета.
//
// Сценарий читается из stdin в формате JSON, план печатается в stdout
// одним JSON-объектом. Диагностика уходит в stderr структурированным
// логом, так что stdout остаётся чистым каналом результата.
//
// Коды возврата:
//
//	0 — получен вердикт ok или infeasible
//	1 — некорректный вход, ошибка оптимизации или ошибка записи
package main

import (
	"os"

	"beltflow/internal/factory"
	"beltflow/pkg/domain"
	"beltflow/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger.Init("warn")

	var plan factory.Plan
	s, err := factory.DecodeScenario(os.Stdin)
	if err != nil {
		plan = factory.Plan{Verdict: domain.VerdictError, Err: err}
	} else {
		plan = factory.Solve(s)
	}

	if err := factory.EncodePlan(os.Stdout, plan); err != nil {
		logger.Error("failed to write plan", "error", err)
		return 1
	}

	if plan.Verdict == domain.VerdictError {
		logger.Error("planning failed", "error", plan.Err)
		return 1
	}
	return 0
}
