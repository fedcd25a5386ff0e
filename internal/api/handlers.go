package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/model"
	"github.com/ppiankov/pap/internal/pipeline"
	"github.com/ppiankov/pap/internal/syncer"
	"github.com/ppiankov/pap/internal/validate"
)

const maxImportBytes = 20 << 20

func (s *Server) syncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Status())
}

func (s *Server) syncReconnect(c *gin.Context) {
	ok := s.coord.Reconnect(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"reconnected": ok, "status": s.coord.Status()})
}

// syncEvents streams coordinator events as server-sent events until the client leaves
func (s *Server) syncEvents(c *gin.Context) {
	events := make(chan syncer.Event, 16)
	unsubscribe := s.coord.Subscribe(func(ev syncer.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	c.SSEvent("status", s.coord.Status())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) listClaims(c *gin.Context) {
	claims := model.FilterClaims(s.coord.Claims(), s.coord.Claimants(), c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, claims)
}

func (s *Server) getClaim(c *gin.Context) {
	claim, ok := s.coord.Claim(c.Param("id"))
	if !ok {
		notFound(c, "claim", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, claim)
}

// saveClaim creates or edits. With ?analyze=true a new claim is analyzed in the background.
func (s *Server) saveClaim(c *gin.Context) {
	var in model.ClaimInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "malformed claim: "+err.Error())
		return
	}
	if err := validate.ClaimInput(&in); err != nil {
		s.fail(c, err)
		return
	}

	_, existed := s.coord.Claim(in.ID)
	claim, err := s.coord.SaveClaim(in)
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
		if c.Query("analyze") == "true" {
			go s.backgroundAnalyze(claim.ID, c.DefaultQuery("lang", "en"))
		}
	}
	c.JSON(status, claim)
}

func (s *Server) backgroundAnalyze(id, lang string) {
	if _, _, err := s.pipe.Enricher.AnalyzeClaim(context.Background(), id, lang); err != nil && !errors.Is(err, pipeline.ErrStale) {
		s.log.Warn("background analysis failed", zap.String("claim", id), zap.Error(err))
	}
}

func (s *Server) deleteClaim(c *gin.Context) {
	id := c.Param("id")
	s.pipe.Enricher.Cancel(id)
	if err := s.coord.DeleteClaim(id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setParams(c *gin.Context) {
	var params []model.AnalysisParam
	if err := c.ShouldBindJSON(&params); err != nil {
		badRequest(c, "expected a JSON array of checklist items")
		return
	}
	if err := validate.AnalysisParams(params); err != nil {
		s.fail(c, err)
		return
	}

	claim, err := s.coord.SetAnalysisParams(c.Param("id"), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

type analyzeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

func (s *Server) analyzeClaim(c *gin.Context) {
	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request: "+err.Error())
			return
		}
	}

	claim, analysis, err := s.pipe.Enricher.AnalyzeClaim(c.Request.Context(), c.Param("id"), lang(req.Lang))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim, "analysis": analysis})
}

func (s *Server) checkLinks(c *gin.Context) {
	if s.links == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "link checking disabled"})
		return
	}
	claim, ok := s.coord.Claim(c.Param("id"))
	if !ok {
		notFound(c, "claim", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, s.links.CheckClaim(c.Request.Context(), claim))
}

func (s *Server) exportClaims(c *gin.Context) {
	data, err := s.coord.ExportClaims()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pap-claims.json"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) importClaims(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		badRequest(c, "read body: "+err.Error())
		return
	}
	n, err := s.coord.ImportClaims(data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

func (s *Server) listClaimants(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Claimants())
}

func (s *Server) getClaimant(c *gin.Context) {
	claimant, stats, ok := s.coord.Claimant(c.Param("id"))
	if !ok {
		notFound(c, "claimant", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimant": claimant, "stats": stats})
}

type enrichRequest struct {
	IDs []string `json:"ids"`
}

type enrichResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

func (s *Server) enrichClaimants(c *gin.Context) {
	var req enrichRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request: "+err.Error())
			return
		}
	}
	if !s.pipe.Analyzer.HasProvider() {
		c.JSON(http.StatusOK, gin.H{"skipped": true, "results": []enrichResult{}})
		return
	}

	results := s.pipe.Enricher.EnrichClaimants(c.Request.Context(), req.IDs)
	out := make([]enrichResult, 0, len(results))
	for _, r := range results {
		res := enrichResult{ID: r.Key}
		if r.Error != nil {
			res.Error = r.Error.Error()
		}
		out = append(out, res)
	}
	c.JSON(http.StatusOK, gin.H{"skipped": false, "results": out})
}

func (s *Server) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, model.Dashboard(s.coord.Claims()))
}

func (s *Server) topics(c *gin.Context) {
	c.JSON(http.StatusOK, model.Topics(s.coord.Claims()))
}

func (s *Server) analyzeText(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}
	c.JSON(http.StatusOK, s.pipe.Analyzer.Analyze(c.Request.Context(), req.Text, lang(req.Lang)))
}

type discoverRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

func (s *Server) discover(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request: "+err.Error())
		return
	}

	if req.URL == "" {
		if strings.TrimSpace(req.Text) == "" {
			badRequest(c, "url or text is required")
			return
		}
		c.JSON(http.StatusOK, pipeline.Discovery{Candidates: s.pipe.Discoverer.FromText(c.Request.Context(), req.Text)})
		return
	}

	found, err := s.pipe.Discoverer.FromURL(c.Request.Context(), req.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, found)
	case errors.Is(err, pipeline.ErrBadURL), errors.Is(err, pipeline.ErrDisallowed):
		s.fail(c, err)
	default:
		s.log.Warn("discovery fetch failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

type manifestoRequest struct {
	Party string `json:"party"`
	Year  int    `json:"year"`
	Text  string `json:"text"`
}

func (s *Server) addManifesto(c *gin.Context) {
	var req manifestoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request: "+err.Error())
		return
	}
	doc, err := s.pipe.Manifestos.Add(req.Party, req.Year, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pipeline.ManifestoSummary{ManifestoDocument: doc, Completion: doc.Completion()})
}

func (s *Server) listManifestos(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipe.Manifestos.List())
}

func (s *Server) getManifesto(c *gin.Context) {
	doc, ok := s.pipe.Manifestos.Get(c.Param("id"))
	if !ok {
		notFound(c, "manifesto", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, pipeline.ManifestoSummary{ManifestoDocument: doc, Completion: doc.Completion()})
}

func (s *Server) updateManifestoClaim(c *gin.Context) {
	var u pipeline.ManifestoUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		badRequest(c, "malformed request: "+err.Error())
		return
	}
	if u.EvidenceURL != nil && *u.EvidenceURL != "" {
		if err := validate.SourceURL(*u.EvidenceURL); err != nil {
			s.fail(c, err)
			return
		}
	}

	claim, err := s.pipe.Manifestos.UpdateClaim(c.Param("id"), c.Param("claimId"), u)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func lang(l string) string {
	if strings.EqualFold(strings.TrimSpace(l), "ne") {
		return "ne"
	}
	return "en"
}
