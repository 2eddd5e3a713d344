package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collaborative-pixelart/internal/domain"
)

func TestEditPersistenceTask(t *testing.T) {
	edit := domain.Edit{
		ProjectID: 3,
		UserID:    7,
		PeerID:    "peer",
		EditType:  domain.EditPaint,
		Data:      `{"frame":0,"cell":1,"swatch":2}`,
		Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Version:   9,
	}

	task, err := NewEditPersistenceTask(edit)
	require.NoError(t, err)
	assert.Equal(t, TypeEditPersistence, task.Type())

	payload, err := ParseEditPersistencePayload(task)
	require.NoError(t, err)
	assert.Equal(t, edit, payload.Edit)
}

func TestAutoSaveCheckTask(t *testing.T) {
	assert.Equal(t, TypeAutoSaveCheck, NewAutoSaveCheckTask().Type())
}
