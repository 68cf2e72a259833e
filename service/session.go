package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"attritioninsight/ai"
	"attritioninsight/dataset"
	"attritioninsight/db"
	"attritioninsight/models"
	"attritioninsight/plot"
)

// State is the phase of the turn a session is processing.
type State int32

const (
	Idle State = iota
	AwaitingModelResponse
	ExtractingPlot
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingModelResponse:
		return "awaiting_model_response"
	case ExtractingPlot:
		return "extracting_plot"
	default:
		return "unknown"
	}
}

const DefaultContextWindow = 10

// Pipeline holds the collaborators every session shares. Store and Charts
// are optional.
type Pipeline struct {
	LLM      ai.Completer
	Data     *DatasetHolder
	Renderer *plot.Renderer
	Store    *db.DB
	Charts   *ChartStorage
	Window   int
	Log      *zap.Logger
}

// Session owns one conversation. Turns on the same session are serialized;
// different sessions run independently.
type Session struct {
	id string
	p  *Pipeline

	mu      sync.Mutex
	history []models.Message
	state   *atomic.Int32
}

// NewSession starts a session with an optional restored history.
func NewSession(id string, p *Pipeline, history []models.Message) *Session {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &Session{
		id:      id,
		p:       p,
		history: append([]models.Message(nil), history...),
		state:   atomic.NewInt32(int32(Idle)),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// History returns a copy of the full transcript.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.history...)
}

// Reset clears the transcript, including its persisted copy. The dataset is
// untouched.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	if s.p.Store != nil {
		if err := s.p.Store.DeleteMessages(s.id); err != nil {
			return fmt.Errorf("failed to clear stored history: %w", err)
		}
	}
	return nil
}

// Send runs one turn. It never returns an error: a failed model call yields
// status=error and leaves the history untouched, and a chart that cannot be
// drawn only drops the image.
func (s *Session) Send(ctx context.Context, query string) models.ChatResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.setState(Idle)

	log := s.p.Log.With(zap.String("session_id", s.id))

	frame := s.p.Data.Current()
	if frame == nil {
		return s.failure(errors.New("no dataset loaded"))
	}
	outcome := s.p.Data.Outcome()

	s.setState(AwaitingModelResponse)
	system := ai.BuildSystemContext(dataset.Summarize(frame), outcome)
	window := s.p.Window
	if window <= 0 {
		window = DefaultContextWindow
	}
	messages := ai.BuildMessages(system, s.history, query, window)

	reply, err := s.p.LLM.Complete(ctx, messages)
	if err != nil {
		log.Error("model call failed", zap.Error(err))
		return s.failure(err)
	}

	s.setState(ExtractingPlot)
	req, match := plot.Extract(reply)
	clean := reply
	if req != nil {
		clean = plot.Strip(reply, match)
	}

	result := models.ChatResult{
		Response:  clean,
		Status:    models.StatusSuccess,
		SessionID: s.id,
	}

	var (
		img  []byte
		used plot.Request
	)
	if req != nil {
		img, used, err = s.visualize(*req, frame, outcome)
		if err != nil {
			log.Warn("dropping plot request",
				zap.String("plot_type", string(req.Type)),
				zap.String("stage", match.Stage.String()),
				zap.Error(err))
		}
	}
	if img == nil {
		if fb, ok := FallbackRequest(query, outcome); ok {
			img, used, err = s.visualize(fb, frame, outcome)
			if err != nil {
				log.Info("fallback plot failed", zap.String("x_column", fb.XColumn), zap.Error(err))
			}
		}
	}
	if img != nil {
		result.PlotData = &used
		result.PlotImage = img
		if s.p.Charts != nil {
			if name, err := s.p.Charts.Save(img); err != nil {
				log.Warn("failed to archive chart", zap.Error(err))
			} else {
				result.PlotFile = name
			}
		}
	}

	turn := []models.Message{
		{Role: models.RoleUser, Content: query},
		{Role: models.RoleAssistant, Content: clean},
	}
	s.history = append(s.history, turn...)
	if s.p.Store != nil {
		if err := s.p.Store.AppendMessages(s.id, turn...); err != nil {
			log.Warn("failed to persist turn", zap.Error(err))
		}
	}
	return result
}

func (s *Session) failure(err error) models.ChatResult {
	return models.ChatResult{
		Response:  fmt.Sprintf("Error processing query: %v", err),
		Status:    models.StatusError,
		SessionID: s.id,
	}
}

// visualize prepares, validates and renders one request.
func (s *Session) visualize(req plot.Request, frame *dataset.Frame, outcome string) ([]byte, plot.Request, error) {
	return Visualize(s.p.Renderer, req, frame, outcome)
}

// Visualize draws req against frame: aliases and derived views first, then
// validation, then rendering.
func Visualize(r *plot.Renderer, req plot.Request, frame *dataset.Frame, outcome string) ([]byte, plot.Request, error) {
	prepared, view, err := plot.Prepare(req, frame, outcome)
	if err != nil {
		return nil, req, err
	}
	if res := plot.Validate(prepared, view); !res.OK {
		return nil, prepared, res.Err
	}
	img, err := r.Render(prepared, view)
	if err != nil {
		return nil, prepared, err
	}
	return img, prepared, nil
}
