package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/quantops/journal"
	"github.com/rustyeddy/quantops/logs"
	"github.com/rustyeddy/quantops/pkg/logging"
	"github.com/rustyeddy/quantops/pkg/scan"
	"github.com/rustyeddy/quantops/signals"
)

// DateLayout is the query parameter format for from and to.
const DateLayout = "2006-01-02"

type logsResponse struct {
	logs.Result
	ExportName string `json:"export_name"`
}

type signalsResponse struct {
	Signals []signals.Signal `json:"signals"`
	Report  scan.Report      `json:"report"`
}

type tradesResponse struct {
	Trades []journal.Trade `json:"trades"`
	Report scan.Report     `json:"report"`
}

type assetsResponse struct {
	Points []journal.AssetPoint `json:"points"`
	NoData bool                 `json:"no_data"`
	Report scan.Report          `json:"report"`
}

// errBadRequest marks caller-input errors.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, errBadRequest) ||
		errors.Is(err, logs.ErrInvalidRange) ||
		errors.Is(err, logs.ErrUnknownCategory) {
		status = http.StatusBadRequest
	} else {
		s.requestLogger(r).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	s.Purge()
	s.requestLogger(r).Info("cache purged")
	writeJSON(w, http.StatusOK, map[string]bool{"purged": true})
}

// logQuery reads category, from, to, keyword and lines. Dates default
// to today in the log time zone.
func (s *Server) logQuery(r *http.Request) (logs.Query, error) {
	v := r.URL.Query()
	q := logs.Query{
		Base:      s.cfg.Logs.Dir,
		Category:  logs.CategoryMain,
		Keyword:   strings.TrimSpace(v.Get("keyword")),
		TailLines: s.cfg.Logs.TailLines,
		Location:  s.loc,
	}

	if c := v.Get("category"); c != "" {
		cat, err := logs.ParseCategory(c)
		if err != nil {
			return q, err
		}
		q.Category = cat
	}

	today := s.now().In(s.loc)
	var err error
	if q.From, err = s.dateParam(v.Get("from"), today); err != nil {
		return q, err
	}
	if q.To, err = s.dateParam(v.Get("to"), today); err != nil {
		return q, err
	}

	if n := v.Get("lines"); n != "" {
		q.TailLines, err = strconv.Atoi(n)
		if err != nil || q.TailLines < 0 {
			return q, fmt.Errorf("%w: lines must be a non-negative integer", errBadRequest)
		}
	}
	return q, nil
}

func (s *Server) dateParam(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(DateLayout, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errBadRequest, v)
	}
	return t, nil
}

func (s *Server) runLogQuery(r *http.Request) (logsResponse, error) {
	q, err := s.logQuery(r)
	if err != nil {
		return logsResponse{}, err
	}

	key := fmt.Sprintf("%s|%s|%s|%s|%d",
		q.Category, q.From.Format(logs.DayLayout), q.To.Format(logs.DayLayout), q.Keyword, q.TailLines)
	return s.logsCache.GetOrLoad(key, func() (logsResponse, error) {
		res, err := q.Run()
		if err != nil {
			return logsResponse{}, err
		}
		logging.Report(s.requestLogger(r), "log query", res.Report)
		if res.Lines == nil {
			res.Lines = []logs.Line{}
		}
		return logsResponse{Result: res, ExportName: logs.ExportName(q.Category, q.From, q.To)}, nil
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runLogQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLogsExport returns the lines of a log query as a text download.
func (s *Server) handleLogsExport(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runLogQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.ExportName))
	if err := logs.WriteLines(w, resp.Lines); err != nil {
		s.requestLogger(r).Warn("export write failed", zap.Error(err))
	}
}

func (s *Server) signalFile() string {
	if s.cfg.Signals.File != "" {
		return s.cfg.Signals.File
	}
	return filepath.Join(s.cfg.Logs.Dir, logs.CategoryMain.CurrentName())
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	path := s.signalFile()
	resp, err := s.signalsCache.GetOrLoad(path, func() (signalsResponse, error) {
		sigs, rep, err := signals.Scan(path, s.cfg.Signals.LinesLimit)
		if err != nil {
			return signalsResponse{}, err
		}
		logging.Report(s.requestLogger(r), "signal scan", rep)
		if sigs == nil {
			sigs = []signals.Signal{}
		}
		return signalsResponse{Signals: sigs, Report: rep}, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	jc := s.cfg.Journal
	resp, err := s.tradesCache.GetOrLoad(jc.TradesDir, func() (tradesResponse, error) {
		paths, err := journal.ListTradeFiles(jc.TradesDir, jc.TradeSuffix, jc.NewestFirst)
		if err != nil {
			return tradesResponse{}, err
		}
		trades, rep := journal.Normalize(paths)
		logging.Report(s.requestLogger(r), "normalize trades", rep)
		if trades == nil {
			trades = []journal.Trade{}
		}
		return tradesResponse{Trades: trades, Report: rep}, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	jc := s.cfg.Journal
	resp, err := s.assetsCache.GetOrLoad(jc.SnapshotsDir, func() (assetsResponse, error) {
		series, rep, err := journal.BuildAssetSeries(jc.SnapshotsDir, jc.Snapshot)
		logging.Report(s.requestLogger(r), "asset series", rep)
		if errors.Is(err, journal.ErrNoData) {
			return assetsResponse{Points: []journal.AssetPoint{}, NoData: true, Report: rep}, nil
		}
		if err != nil {
			return assetsResponse{}, err
		}
		return assetsResponse{Points: series.Points, Report: rep}, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
