package grading_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/grading"
	mock_grading "github.com/dailymath/dailymath/internal/mocks/grading"
)

func TestGrader_Grade(t *testing.T) {
	image := grading.Image{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}

	tests := []struct {
		name      string
		images    []grading.Image
		setupMock func(m *mock_grading.MockModel)
		wantScore int
		wantErr   error
	}{
		{
			name:   "graded",
			images: []grading.Image{image},
			setupMock: func(m *mock_grading.MockModel) {
				m.EXPECT().
					Generate(gomock.Any(), gomock.Any(), []grading.Image{image}).
					Return(`{"score":90,"feedback":[{"title":"Nice","text":"Well done.","type":"success"}]}`, nil)
			},
			wantScore: 90,
		},
		{
			name:      "no images",
			images:    nil,
			setupMock: func(m *mock_grading.MockModel) {},
			wantErr:   apperr.ErrValidation,
		},
		{
			name:      "too many images",
			images:    []grading.Image{image, image, image, image, image, image},
			setupMock: func(m *mock_grading.MockModel) {},
			wantErr:   apperr.ErrValidation,
		},
		{
			name:   "model failure",
			images: []grading.Image{image},
			setupMock: func(m *mock_grading.MockModel) {
				m.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.Join(apperr.ErrNetwork, errors.New("deadline exceeded")))
			},
			wantErr: apperr.ErrNetwork,
		},
		{
			name:   "invalid output",
			images: []grading.Image{image},
			setupMock: func(m *mock_grading.MockModel) {
				m.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(`{"score":150,"feedback":[]}`, nil)
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			model := mock_grading.NewMockModel(ctrl)
			tt.setupMock(model)

			grader, err := grading.NewGrader(model)
			require.NoError(t, err)

			resp, err := grader.Grade(context.Background(), "2+2?", tt.images)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, *resp.Score)
		})
	}
}

func TestGrader_PromptContainsQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	model := mock_grading.NewMockModel(ctrl)
	model.EXPECT().
		Generate(gomock.Any(), grading.BuildPrompt("What is 7*6?"), gomock.Any()).
		Return(`{"score":100,"feedback":[]}`, nil)

	grader, err := grading.NewGrader(model)
	require.NoError(t, err)
	_, err = grader.Grade(context.Background(), "What is 7*6?", []grading.Image{{MIMEType: "image/png", Data: []byte("x")}})
	require.NoError(t, err)
}

func TestGrader_DebugLogsRawResponse(t *testing.T) {
	const raw = `{"score":80,"feedback":[{"title":"Close","text":"Check the sign","type":"info"}]}`
	tests := []struct {
		name    string
		debug   bool
		wantLog bool
	}{
		{name: "debug on", debug: true, wantLog: true},
		{name: "debug off", debug: false, wantLog: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			t.Cleanup(func() { log.SetOutput(os.Stderr) })

			ctrl := gomock.NewController(t)
			model := mock_grading.NewMockModel(ctrl)
			model.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(raw, nil)

			grader, err := grading.NewGrader(model)
			require.NoError(t, err)
			_, err = grader.WithDebug(tt.debug).Grade(context.Background(), "2-3?", []grading.Image{{MIMEType: "image/png", Data: []byte("x")}})
			require.NoError(t, err)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Raw model response: "+raw)
			} else {
				assert.NotContains(t, buf.String(), "Raw model response")
			}
		})
	}
}
