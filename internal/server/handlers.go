package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"beltflow/internal/codec"
	"beltflow/internal/factory"
	"beltflow/internal/report"
	"beltflow/pkg/apperror"
	"beltflow/pkg/domain"
	"beltflow/pkg/logger"
	"beltflow/pkg/metrics"
)

const reportIDHeader = "X-Report-Id"

// handleSolve решает задачу о допустимости потока.
// Тело запроса и ответа совпадают с stdin/stdout CLI belts.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	p, err := codec.DecodeProblem(s.limitBody(w, r))
	if err != nil {
		s.writeResult(w, r, domain.Failure(err))
		return
	}

	s.writeResult(w, r, s.flows.Solve(r.Context(), p))
}

// handlePlan строит производственный план фабрики.
// Тело запроса и ответа совпадают с stdin/stdout CLI factory.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sc, err := factory.DecodeScenario(s.limitBody(w, r))
	if err != nil {
		metrics.Get().RecordPlanOperation(false, time.Since(start))
		s.writePlan(w, r, factory.Plan{Verdict: domain.VerdictError, Err: err})
		return
	}

	plan := factory.Solve(sc)
	metrics.Get().RecordPlanOperation(plan.Verdict != domain.VerdictError, time.Since(start))
	s.writePlan(w, r, plan)
}

// handleReport решает задачу и отдаёт отчёт в запрошенном формате
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeResult(w, r, domain.Failure(err))
		return
	}

	gen, ok := s.generators[format]
	if !ok {
		err := apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported report format %q", format), "format")
		s.writeResult(w, r, domain.Failure(err))
		return
	}

	p, err := codec.DecodeProblem(s.limitBody(w, r))
	if err != nil {
		s.writeResult(w, r, domain.Failure(err))
		return
	}

	res := s.flows.Solve(r.Context(), p)
	if res.Verdict == domain.VerdictError {
		metrics.Get().RecordReport(string(format), false)
		s.writeResult(w, r, res)
		return
	}

	content, err := gen.Generate(r.Context(), report.NewData(p, res, nil))
	if err != nil {
		metrics.Get().RecordReport(string(format), false)
		logger.WithRequestID(GetRequestID(r.Context())).Error("Report generation failed",
			"format", format, "error", err)
		s.writeResult(w, r, domain.Failure(apperror.Wrap(err, apperror.CodeInternal, "failed to generate report")))
		return
	}

	metrics.Get().RecordReport(string(format), true)

	filename := fmt.Sprintf("report_%s%s", time.Now().Format("20060102_150405"), format.Extension())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set(reportIDHeader, uuid.NewString())
	if _, err := w.Write(content); err != nil {
		// Логировать не можем - response уже начат отправляться
		return
	}
}

// handleHealthz отвечает на liveness-пробы
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		return
	}
}

// handleReadyz отвечает на readiness-пробы
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte(`{"ready":false}`)); err != nil {
			return
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"ready":true}`)); err != nil {
		return
	}
}

// writeResult сериализует результат решения. Вердикты ok и infeasible
// отдаются с HTTP 200, вердикт error транслируется в статус по коду ошибки.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res domain.Result) {
	body, err := codec.MarshalResult(res)
	if err != nil {
		logger.WithRequestID(GetRequestID(r.Context())).Error("Failed to marshal result", "error", err)
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if res.Verdict == domain.VerdictError {
		status = apperror.ToHTTP(res.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return
	}
}

// writePlan сериализует план с той же схемой статусов, что и writeResult
func (s *Server) writePlan(w http.ResponseWriter, r *http.Request, plan factory.Plan) {
	body, err := factory.MarshalPlan(plan)
	if err != nil {
		logger.WithRequestID(GetRequestID(r.Context())).Error("Failed to marshal plan", "error", err)
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if plan.Verdict == domain.VerdictError {
		status = apperror.ToHTTP(plan.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return
	}
}

// limitBody ограничивает размер тела запроса согласно конфигурации
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) io.Reader {
	if s.cfg.HTTP.MaxBodyBytes <= 0 {
		return r.Body
	}
	return http.MaxBytesReader(w, r.Body, s.cfg.HTTP.MaxBodyBytes)
}
