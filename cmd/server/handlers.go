package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stocker/internal/config"
	"stocker/internal/service"
	"stocker/internal/stock"
)

const (
	msgRunning      = "Stocker API 서버가 실행 중입니다."
	msgStocksFailed = "주식 정보를 가져오는데 실패했습니다."
	msgMainFailed   = "주요 주식 정보를 가져오는데 실패했습니다."
	msgBadChartType = "chartType은 D, W, M 중 하나여야 합니다."
)

type messageResponse struct {
	Message string `json:"message"`
}

type server struct {
	svc *service.Service
	log zerolog.Logger
}

// newHandler returns the routes wrapped in the middleware chain.
func newHandler(svc *service.Service, cfg config.Server, log zerolog.Logger) http.Handler {
	s := &server{svc: svc, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/stocks/korean", s.handleKorean)
	mux.HandleFunc("GET /api/stocks/korean/main", s.handleMainKorean)
	mux.HandleFunc("GET /api/stocks/foreign", s.handleForeign)
	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleDetail)
	mux.HandleFunc("GET /api/stocks/{symbol}/chart", s.handleChart)
	mux.HandleFunc("GET /api/stocks/{symbol}/chart/points", s.handleChartPoints)

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	return withRequestLog(log,
		withJSONHeaders(cfg.AllowedOrigin(),
			withGzip(
				recoverPanic(log,
					withTimeout(timeout,
						limitBody(mux))))))
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: msgRunning})
}

func (s *server) handleKorean(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.KoreanStocks())
}

func (s *server) handleForeign(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ForeignStocks())
}

func (s *server) handleMainKorean(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.svc.MainKoreanStocks(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("main board")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgMainFailed})
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleDetail(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.StockDetail(r.PathValue("symbol"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgStocksFailed})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	period, ok := s.period(w, r)
	if !ok {
		return
	}
	s.log.Debug().Str("symbol", symbol).Str("chartType", period.String()).Msg("chart requested")

	series, err := s.svc.Chart(r.Context(), symbol, period)
	if err != nil {
		s.chartError(w, symbol, err)
		return
	}
	s.log.Debug().Str("symbol", symbol).Int("bars", len(series.Prices)).Msg("chart served")
	writeJSON(w, http.StatusOK, series)
}

func (s *server) handleChartPoints(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	period, ok := s.period(w, r)
	if !ok {
		return
	}
	pts, err := s.svc.ChartPoints(r.Context(), symbol, period)
	if err != nil {
		s.chartError(w, symbol, err)
		return
	}
	writeJSON(w, http.StatusOK, pts)
}

func (s *server) period(w http.ResponseWriter, r *http.Request) (stock.Period, bool) {
	p, err := stock.ParsePeriod(r.URL.Query().Get("chartType"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: msgBadChartType})
		return "", false
	}
	return p, true
}

func (s *server) chartError(w http.ResponseWriter, symbol string, err error) {
	s.log.Error().Err(err).Str("symbol", symbol).Msg("chart")
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
