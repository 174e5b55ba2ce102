package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oarkflow/oracle/nlp/export"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/telemetry"
)

// Request carries either raw text, segmented by the engine, or pre-split sentences.
type Request struct {
	ID               string   `json:"id"`
	Document         string   `json:"document"`
	Summary          string   `json:"summary"`
	Sentences        []string `json:"sentences"`
	SummarySentences []string `json:"summary_sentences"`
	Oracle           []int    `json:"oracle"`
}

func (r *Request) split(e *oracle.Engine) (oracle.Document, oracle.Summary) {
	doc, sum := e.Segment(r.Document, r.Summary)
	if len(r.Sentences) > 0 {
		doc = r.Sentences
	}
	if len(r.SummarySentences) > 0 {
		sum = r.SummarySentences
	}
	return doc, sum
}

type Response struct {
	ID          string  `json:"id,omitempty"`
	Method      string  `json:"method"`
	Indices     []int   `json:"indices"`
	Score       float64 `json:"score"`
	Evaluations int     `json:"evaluations,omitempty"`
}

func parse(c *fiber.Ctx) (*Request, error) {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return &req, nil
}

func (s *Server) greedy(c *fiber.Ctx) error {
	req, err := parse(c)
	if err != nil {
		return err
	}
	e := s.Engine()
	doc, sum := req.split(e)
	start := time.Now()
	indices, err := e.Greedy(doc, sum)
	if err != nil {
		telemetry.ObserveSearch("greedy", "failed", 0, time.Since(start))
		return err
	}
	score, err := e.TotalScore(doc, sum, indices)
	if err != nil {
		return err
	}
	telemetry.ObserveSearch("greedy", "ok", len(doc)*len(sum), time.Since(start))
	return s.respond(c, Response{ID: req.ID, Method: "greedy", Indices: indices, Score: score})
}

func (s *Server) beam(c *fiber.Ctx) error {
	req, err := parse(c)
	if err != nil {
		return err
	}
	e := s.Engine()
	doc, sum := req.split(e)
	start := time.Now()
	res, err := e.BeamSearch(c.UserContext(), doc, sum)
	if err != nil {
		telemetry.ObserveSearch("beam", "failed", res.Evaluations, time.Since(start))
		return err
	}
	telemetry.ObserveSearch("beam", "ok", res.Evaluations, time.Since(start))
	return s.respond(c, Response{
		ID:          req.ID,
		Method:      "beam",
		Indices:     res.Indices,
		Score:       res.Score,
		Evaluations: res.Evaluations,
	})
}

func (s *Server) refine(c *fiber.Ctx) error {
	req, err := parse(c)
	if err != nil {
		return err
	}
	e := s.Engine()
	doc, sum := req.split(e)
	if len(req.Oracle) > e.Options().MaxRefineSize {
		telemetry.Refinements.WithLabelValues("skipped").Inc()
		return c.JSON(Response{ID: req.ID, Method: "refine", Indices: req.Oracle})
	}
	refined, err := e.Refine(doc, sum, req.Oracle)
	if err != nil {
		telemetry.Refinements.WithLabelValues("failed").Inc()
		return err
	}
	telemetry.Refinements.WithLabelValues("refined").Inc()
	score, err := e.TotalScore(doc, sum, refined)
	if err != nil {
		return err
	}
	return s.respond(c, Response{ID: req.ID, Method: "refine", Indices: refined, Score: score})
}

// respond persists the result when the request is identified and a store is attached.
func (s *Server) respond(c *fiber.Ctx, resp Response) error {
	if resp.ID != "" && s.store != nil {
		rec := export.Record{
			DocID:   resp.ID,
			Method:  resp.Method,
			Indices: resp.Indices,
			Score:   resp.Score,
			RunID:   c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if err := s.store.Save(rec); err != nil {
			return err
		}
	}
	return c.JSON(resp)
}

type SampleRequest struct {
	Oracle []int `json:"oracle"`
	Field  int   `json:"field"`
	// Sentences is the document's sentence count; Document is segmented when it is zero.
	Sentences int    `json:"sentences"`
	Document  string `json:"document"`
	Num       int    `json:"num"`
}

func (s *Server) sample(c *fiber.Ctx) error {
	var req SampleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	count := req.Sentences
	if count == 0 {
		doc, _ := s.Engine().Segment(req.Document, "")
		count = len(doc)
	}
	s.mu.Lock()
	indices, err := s.sampler.Sample(req.Oracle, req.Field, count, req.Num)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"indices": indices})
}

func (s *Server) lookup(c *fiber.Ctx) error {
	if s.store == nil {
		return fiber.NewError(fiber.StatusNotFound, "no oracle store configured")
	}
	rec, err := s.store.Get(c.Params("id"), c.Query("method", "beam"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}
