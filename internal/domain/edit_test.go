package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvas_ApplyEdit_PaintAndErase(t *testing.T) {
	c := NewBlankCanvas(2, 2, 8)

	require.NoError(t, c.ApplyEdit(EditPaint, EditData{Frame: 0, Cell: 3, Swatch: 2}))
	require.NotNil(t, c.Frames[0].Pixels[3])
	assert.Equal(t, 2, *c.Frames[0].Pixels[3])

	require.NoError(t, c.ApplyEdit(EditErase, EditData{Frame: 0, Cell: 3}))
	assert.Nil(t, c.Frames[0].Pixels[3])
}

func TestCanvas_ApplyEdit_Frames(t *testing.T) {
	c := NewBlankCanvas(1, 1, 8)
	c.Frames[0].Interval = NewInterval(50)

	require.NoError(t, c.ApplyEdit(EditAddFrame, EditData{Frame: 1}))
	require.Len(t, c.Frames, 2)
	assert.Equal(t, 100.0, c.Frames[1].Interval.Float())

	require.NoError(t, c.ApplyEdit(EditAddFrame, EditData{Frame: 0, Interval: "10"}))
	require.Len(t, c.Frames, 3)
	assert.Equal(t, 10.0, c.Frames[0].Interval.Float(), "插入到开头")
	assert.Equal(t, 50.0, c.Frames[1].Interval.Float())

	require.NoError(t, c.ApplyEdit(EditInterval, EditData{Frame: 1, Interval: "60"}))
	assert.Equal(t, 60.0, c.Frames[1].Interval.Float())

	require.NoError(t, c.ApplyEdit(EditRemoveFrame, EditData{Frame: 0}))
	require.Len(t, c.Frames, 2)
	assert.Equal(t, 60.0, c.Frames[0].Interval.Float())
}

func TestCanvas_ApplyEdit_Swatch(t *testing.T) {
	c := NewBlankCanvas(1, 1, 8)
	n := len(c.Palette)

	require.NoError(t, c.ApplyEdit(EditSwatch, EditData{Swatch: 0, Color: "#010203"}))
	assert.Equal(t, "#010203", c.Palette[0].Color)

	require.NoError(t, c.ApplyEdit(EditSwatch, EditData{Swatch: n, Color: "teal"}))
	assert.Len(t, c.Palette, n+1)
	assert.Equal(t, "teal", c.Palette[n].Color)
}

func TestCanvas_ApplyEdit_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		editType string
		data     EditData
	}{
		{"unknown type", "smudge", EditData{}},
		{"frame out of range", EditPaint, EditData{Frame: 3}},
		{"cell out of range", EditPaint, EditData{Cell: 10}},
		{"swatch out of range", EditPaint, EditData{Swatch: 42}},
		{"nan interval", EditInterval, EditData{Interval: "soon"}},
		{"empty color", EditSwatch, EditData{Swatch: 0}},
		{"swatch gap", EditSwatch, EditData{Swatch: 99, Color: "red"}},
		{"insert position", EditAddFrame, EditData{Frame: 5}},
		{"remove last frame", EditRemoveFrame, EditData{Frame: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBlankCanvas(2, 2, 8)
			err := c.ApplyEdit(tt.editType, tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEdit))
		})
	}
}

func TestEdit_DataRoundTrip(t *testing.T) {
	e := &Edit{EditType: EditPaint}
	require.NoError(t, e.SetData(EditData{Frame: 1, Cell: 2, Swatch: 3}))

	data, err := e.ParseData()
	require.NoError(t, err)
	assert.Equal(t, EditData{Frame: 1, Cell: 2, Swatch: 3}, data)

	_, err = (&Edit{EditType: EditPaint}).ParseData()
	assert.Error(t, err)
}
