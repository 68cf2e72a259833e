package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attritioninsight/dataset"
	"attritioninsight/models"
)

func TestBuildSystemContext(t *testing.T) {
	frame, err := dataset.NewFrame(
		dataset.NewNumeric("Age", []float64{30, 40, 50}),
		dataset.NewCategorical("Department", []string{"Sales", "HR", "Sales"}),
	)
	require.NoError(t, err)

	ctx := BuildSystemContext(dataset.Summarize(frame), "")
	assert.Contains(t, ctx, `"rows": 3`)
	assert.Contains(t, ctx, `"Department"`)
	assert.Contains(t, ctx, "```plot")
	assert.Contains(t, ctx, "heatmap")
	assert.Contains(t, ctx, dataset.RateColumn)
}

func TestBuildMessagesWindow(t *testing.T) {
	var history []models.Message
	for i := 0; i < 30; i++ {
		history = append(history,
			models.Message{Role: models.RoleUser, Content: fmt.Sprintf("q%d", i)},
			models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}

	msgs := BuildMessages("sys", history, "latest", 10)
	require.Len(t, msgs, 11)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, "latest", msgs[10].Content)
	assert.Equal(t, "a25", msgs[1].Content)
	assert.Len(t, history, 60)
}

func TestBuildMessagesShortHistory(t *testing.T) {
	msgs := BuildMessages("sys", nil, "hi", 10)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "hi"}, msgs[1])
}
