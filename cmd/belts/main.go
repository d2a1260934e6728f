// Команда belts решает задачу о допустимости потока на конвейерной сети.
//
// Описание задачи читается из stdin в формате JSON, результат печатается в
// stdout одним JSON-объектом. Диагностика уходит в stderr структурированным
// логом, так что stdout остаётся чистым каналом результата и его можно
// передавать по конвейеру дальше.
//
// Коды возврата:
//
//	0 — получен вердикт ok или infeasible
//	1 — некорректный вход, ошибка решателя или ошибка записи
package main

import (
	"context"
	"os"

	"beltflow/internal/codec"
	"beltflow/internal/service"
	"beltflow/pkg/config"
	"beltflow/pkg/domain"
	"beltflow/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger.Init("warn")

	var res domain.Result
	p, err := codec.DecodeProblem(os.Stdin)
	if err != nil {
		res = domain.Failure(err)
	} else {
		// Нулевая конфигурация: dinic, таймаут по умолчанию, допуск 1e-9.
		svc := service.NewFlowService(config.SolverConfig{}, nil)
		res = svc.Solve(context.Background(), p)
	}

	if err := codec.EncodeResult(os.Stdout, res); err != nil {
		logger.Error("failed to write result", "error", err)
		return 1
	}

	if res.Verdict == domain.VerdictError {
		logger.Error("solve failed", "error", res.Err)
		return 1
	}
	return 0
}
