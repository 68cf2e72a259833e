package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attritioninsight/ai"
	"attritioninsight/dataset"
	"attritioninsight/db"
	"attritioninsight/models"
	"attritioninsight/plot"
	"attritioninsight/validation"
)

type fakeLLM struct {
	mu    sync.Mutex
	reply func(call int) (string, error)
	calls [][]models.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]models.Message(nil), messages...))
	return f.reply(len(f.calls))
}

func (f *fakeLLM) last() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func replying(text string) *fakeLLM {
	return &fakeLLM{reply: func(int) (string, error) { return text, nil }}
}

var _ ai.Completer = (*fakeLLM)(nil)

func departments(t *testing.T) *dataset.Frame {
	t.Helper()
	var dept, attrition []string
	var age []float64
	add := func(name string, total, left int) {
		for i := 0; i < total; i++ {
			dept = append(dept, name)
			age = append(age, float64(20+i%40))
			if i < left {
				attrition = append(attrition, "Yes")
			} else {
				attrition = append(attrition, "No")
			}
		}
	}
	add("Sales", 100, 20)
	add("R&D", 50, 5)
	frame, err := dataset.NewFrame(
		dataset.NewNumeric("Age", age),
		dataset.NewCategorical("Department", dept),
		dataset.NewBoolean("Attrition", attrition),
	)
	require.NoError(t, err)
	return frame
}

func newPipeline(t *testing.T, llm ai.Completer) *Pipeline {
	t.Helper()
	return &Pipeline{
		LLM:      llm,
		Data:     NewDatasetHolder(departments(t), "test", ""),
		Renderer: plot.NewRenderer(6, 4, 60),
	}
}

func isPNG(img []byte) bool {
	return bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n"))
}

const departmentReply = "Sales loses staff at twice the rate of R&D.\n\n" +
	"```plot\n" +
	`{"type": "bar", "x_column": "Department", "y_column": "Attrition Rate", "title": "Attrition Rate by Department"}` +
	"\n```\n"

func TestSendShowsAttritionByDepartment(t *testing.T) {
	p := newPipeline(t, replying(departmentReply))
	s := NewSession("s1", p, nil)

	res := s.Send(context.Background(), "show attrition by department")

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "s1", res.SessionID)
	require.NotNil(t, res.PlotData)
	assert.Equal(t, plot.Bar, res.PlotData.Type)
	assert.Equal(t, "Department", res.PlotData.XColumn)
	assert.Equal(t, dataset.RateColumn, res.PlotData.YColumn)
	assert.True(t, isPNG(res.PlotImage))
	assert.Equal(t, "Sales loses staff at twice the rate of R&D.", res.Response)
	assert.Zero(t, p.Renderer.Outstanding())

	report, err := AttritionBy(p.Data.Current(), "department", "Attrition")
	require.NoError(t, err)
	assert.Equal(t, []string{"R&D", "Sales"}, report.Labels)
	assert.Equal(t, []float64{10.0, 20.0}, report.Rates)
}

func TestSuccessfulTurnAppendsTwoMessages(t *testing.T) {
	s := NewSession("s1", newPipeline(t, replying("All good.")), nil)

	s.Send(context.Background(), "how many employees are there?")

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "how many employees are there?"}, history[0])
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: "All good."}, history[1])
	assert.Equal(t, Idle, s.State())
}

func TestStoredAssistantMessageHasNoPlotBlock(t *testing.T) {
	s := NewSession("s1", newPipeline(t, replying(departmentReply)), nil)
	s.Send(context.Background(), "chart please")

	history := s.History()
	require.Len(t, history, 2)
	assert.NotContains(t, history[1].Content, "```")
	assert.NotContains(t, history[1].Content, "x_column")
}

func TestFailedTurnAppendsNothing(t *testing.T) {
	llm := &fakeLLM{reply: func(call int) (string, error) {
		if call == 2 {
			return "", fmt.Errorf("%w: connection refused", ai.ErrTransport)
		}
		return "ok", nil
	}}
	s := NewSession("s1", newPipeline(t, llm), nil)

	s.Send(context.Background(), "first")
	res := s.Send(context.Background(), "second")

	assert.Equal(t, models.StatusError, res.Status)
	assert.Contains(t, res.Response, "connection refused")
	assert.Nil(t, res.PlotImage)
	assert.Len(t, s.History(), 2)
	assert.Equal(t, Idle, s.State())
}

func TestResetClearsHistory(t *testing.T) {
	store, err := db.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p := newPipeline(t, replying("ok"))
	p.Store = store
	s := NewSession("s1", p, nil)
	s.Send(context.Background(), "one")
	s.Send(context.Background(), "two")
	require.Len(t, s.History(), 4)

	require.NoError(t, s.Reset())

	assert.Empty(t, s.History())
	stored, err := store.LoadMessages("s1")
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, 150, p.Data.Current().Rows())
}

func TestContextWindowKeepsLastTenMessages(t *testing.T) {
	llm := &fakeLLM{reply: func(call int) (string, error) { return fmt.Sprintf("a%d", call), nil }}
	s := NewSession("s1", newPipeline(t, llm), nil)

	for i := 1; i <= 30; i++ {
		s.Send(context.Background(), fmt.Sprintf("q%d", i))
	}
	s.Send(context.Background(), "q31")

	sent := llm.last()
	require.Len(t, sent, 11)
	assert.Equal(t, models.RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, "HR")
	assert.Equal(t, models.Message{Role: models.RoleAssistant, Content: "a26"}, sent[1])
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "q31"}, sent[10])
	assert.Len(t, s.History(), 62)
}

func TestFallbackPlotWhenReplyHasNoBlock(t *testing.T) {
	p := newPipeline(t, replying("Sales has the highest attrition."))
	s := NewSession("s1", p, nil)

	res := s.Send(context.Background(), "What is the attrition by department?")

	assert.Equal(t, models.StatusSuccess, res.Status)
	require.NotNil(t, res.PlotData)
	assert.Equal(t, "Department", res.PlotData.XColumn)
	assert.Equal(t, dataset.RateColumn, res.PlotData.YColumn)
	assert.True(t, isPNG(res.PlotImage))
}

func TestFallbackReplacesInvalidRequest(t *testing.T) {
	reply := "See chart.\n```plot\n{\"type\": \"bar\", \"x_column\": \"Division\"}\n```"
	s := NewSession("s1", newPipeline(t, replying(reply)), nil)

	res := s.Send(context.Background(), "attrition per department")

	require.NotNil(t, res.PlotData)
	assert.Equal(t, "Department", res.PlotData.XColumn)
}

func TestInvalidRequestDropsOnlyThePlot(t *testing.T) {
	reply := "Here you go.\n```plot\n{\"type\": \"scatter\", \"x_column\": \"Age\"}\n```"
	s := NewSession("s1", newPipeline(t, replying(reply)), nil)

	res := s.Send(context.Background(), "plot something")

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "Here you go.", res.Response)
	assert.Nil(t, res.PlotData)
	assert.Nil(t, res.PlotImage)
	assert.Len(t, s.History(), 2)
}

func TestNoPlotWithoutRequestOrKeywords(t *testing.T) {
	s := NewSession("s1", newPipeline(t, replying("Hello!")), nil)
	res := s.Send(context.Background(), "hello there")
	assert.Nil(t, res.PlotData)
	assert.Nil(t, res.PlotImage)
}

func TestSendWithoutDataset(t *testing.T) {
	llm := replying("unused")
	p := newPipeline(t, llm)
	p.Data = NewDatasetHolder(nil, "", "")
	s := NewSession("s1", p, nil)

	res := s.Send(context.Background(), "anything")

	assert.Equal(t, models.StatusError, res.Status)
	assert.Empty(t, llm.calls)
	assert.Empty(t, s.History())
}

func TestChartsAreArchived(t *testing.T) {
	dir := t.TempDir()
	charts, err := NewChartStorage(dir)
	require.NoError(t, err)

	p := newPipeline(t, replying(departmentReply))
	p.Charts = charts
	res := NewSession("s1", p, nil).Send(context.Background(), "chart")

	require.NotEmpty(t, res.PlotFile)
	path, err := charts.Path(res.PlotFile)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.PlotImage, data)
	assert.Equal(t, filepath.Join(dir, res.PlotFile), path)

	for _, bad := range []string{"../secret.png", "missing.png", "chart.txt", ""} {
		_, err := charts.Path(bad)
		assert.ErrorIs(t, err, ErrChartNotFound, bad)
	}
}

func TestConcurrentTurnsOnOneSessionAreSerialized(t *testing.T) {
	s := NewSession("s1", newPipeline(t, replying("ok")), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Send(context.Background(), fmt.Sprintf("q%d", i))
		}(i)
	}
	wg.Wait()

	history := s.History()
	require.Len(t, history, 16)
	for i := 0; i < len(history); i += 2 {
		assert.Equal(t, models.RoleUser, history[i].Role)
		assert.Equal(t, models.RoleAssistant, history[i+1].Role)
	}
}

func TestManagerRestoresPersistedSessions(t *testing.T) {
	store, err := db.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p := newPipeline(t, replying("ok"))
	p.Store = store

	m := NewManager(p, time.Hour, time.Minute)
	first := m.Chat(context.Background(), "", "one")
	require.Equal(t, models.StatusSuccess, first.Status)
	require.NotEmpty(t, first.SessionID)
	m.Chat(context.Background(), first.SessionID, "two")
	assert.Equal(t, 1, m.Active())

	restarted := NewManager(p, time.Hour, time.Minute)
	history, err := restarted.History(first.SessionID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.EqualValues(t, 1, restarted.Restored())

	sessions, err := restarted.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, first.SessionID, sessions[0].ID)
	assert.Equal(t, 4, sessions[0].Messages)

	require.NoError(t, restarted.Reset(first.SessionID))
	history, err = restarted.History(first.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestExpiredSessionStaysPinnedDuringTurn(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	llm := &fakeLLM{reply: func(call int) (string, error) {
		if call == 1 {
			close(entered)
			<-unblock
		}
		return "ok", nil
	}}
	m := NewManager(newPipeline(t, llm), 20*time.Millisecond, 5*time.Millisecond)

	first, err := m.Get("slow")
	require.NoError(t, err)

	done := make(chan models.ChatResult)
	go func() { done <- m.Chat(context.Background(), "slow", "one") }()
	<-entered

	require.Eventually(t, func() bool { return m.Evicted() > 0 }, time.Second, 5*time.Millisecond)
	again, err := m.Get("slow")
	require.NoError(t, err)
	assert.Same(t, first, again)

	close(unblock)
	res := <-done
	require.Equal(t, models.StatusSuccess, res.Status)
	assert.Len(t, again.History(), 2)
}

func TestManagerRejectsPrefixLikeSessionIDs(t *testing.T) {
	store, err := db.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	p := newPipeline(t, replying("ok"))
	p.Store = store
	m := NewManager(p, time.Hour, time.Minute)

	m.Chat(context.Background(), "a", "one")
	res := m.Chat(context.Background(), "a:b", "two")
	assert.Equal(t, models.StatusError, res.Status)

	_, err = m.History("a:b")
	assert.ErrorIs(t, err, validation.ErrInvalidSession)
	history, err := m.History("a")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestManagerKeepsSessionsApart(t *testing.T) {
	m := NewManager(newPipeline(t, replying("ok")), time.Hour, time.Minute)
	a := m.Chat(context.Background(), "a", "one")
	m.Chat(context.Background(), "b", "one")
	m.Chat(context.Background(), "b", "two")

	ha, _ := m.History(a.SessionID)
	hb, _ := m.History("b")
	assert.Len(t, ha, 2)
	assert.Len(t, hb, 4)
}

func TestModelErrorsSurfaceAsStatusError(t *testing.T) {
	for _, err := range []error{
		ai.ErrMalformedResponse,
		&ai.StatusError{Code: 500, Message: "boom"},
		context.DeadlineExceeded,
		errors.New("unexpected"),
	} {
		llm := &fakeLLM{reply: func(int) (string, error) { return "", err }}
		res := NewSession("s1", newPipeline(t, llm), nil).Send(context.Background(), "q")
		assert.Equal(t, models.StatusError, res.Status, err.Error())
		assert.NotEmpty(t, res.Response)
	}
}
