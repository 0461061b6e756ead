package vision

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/genproto/googleapis/type/color"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/pattern"
)

var testTables = LabelTables{
	Category: pattern.Table{
		{Term: "Jeans", Keywords: []string{"jeans", "jean"}},
		{Term: "Pants", Keywords: []string{"pants", "trousers"}},
	},
	Color:    pattern.Table{{Term: "Blue", Keywords: []string{"blue", "navy"}}},
	Material: pattern.Table{{Term: "Denim", Keywords: []string{"denim", "jean"}}},
	Pattern:  pattern.Table{{Term: "Striped", Keywords: []string{"stripe"}}},
}

func fakeAnnotate(resp *visionpb.AnnotateImageResponse, err error) (annotateFunc, *int) {
	calls := 0
	return func(_ context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		calls++
		if err != nil {
			return nil, err
		}
		return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{resp}}, nil
	}, &calls
}

func TestGCPClient_Labels(t *testing.T) {
	annotate, calls := fakeAnnotate(&visionpb.AnnotateImageResponse{
		LabelAnnotations: []*visionpb.EntityAnnotation{
			{Description: "Jeans", Score: 0.92},
			{Description: "Denim", Score: 0.88},
			{Description: "Electric blue", Score: 0.8},
			{Description: "Trousers", Score: 0.7},
			{Description: "Pocket", Score: 0.65},
		},
	}, nil)
	client := newGCPClientWith(annotate, nil, testTables)

	attrs, err := client.Analyze(context.Background(), sampleImage)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	assert.Equal(t, model.ImageAttributes{
		model.AxisCategory: model.Ranked(
			model.Candidate{Name: "jeans", Confidence: 0.92},
			model.Candidate{Name: "trousers", Confidence: 0.7},
		),
		model.AxisColor:    model.Ranked(model.Candidate{Name: "Blue", Confidence: 0.8}),
		model.AxisMaterial: model.Ranked(model.Candidate{Name: "Denim", Confidence: 0.92}),
	}, attrs)
}

func TestGCPClient_DominantColors(t *testing.T) {
	annotate, _ := fakeAnnotate(&visionpb.AnnotateImageResponse{
		ImagePropertiesAnnotation: &visionpb.ImageProperties{
			DominantColors: &visionpb.DominantColorsAnnotation{
				Colors: []*visionpb.ColorInfo{
					{Color: &color.Color{Red: 0, Green: 0, Blue: 120}, Score: 0.3},
					{Color: &color.Color{Red: 250, Green: 10, Blue: 10}, Score: 0.6},
				},
			},
		},
	}, nil)
	client := newGCPClientWith(annotate, nil, testTables)

	attrs, err := client.Analyze(context.Background(), sampleImage)
	require.NoError(t, err)
	assert.Equal(t, []model.Candidate{
		{Name: "Red", Confidence: 0.6},
		{Name: "Navy", Confidence: 0.3},
	}, attrs.Candidates(model.AxisColor))
	assert.True(t, attrs.Get(model.AxisCategory).IsEmpty())
}

func TestGCPClient_Errors(t *testing.T) {
	t.Run("annotate error is retryable", func(t *testing.T) {
		annotate, _ := fakeAnnotate(nil, errors.New("unavailable"))
		_, err := newGCPClientWith(annotate, nil, testTables).Analyze(context.Background(), sampleImage)
		require.Error(t, err)
		assert.True(t, common.IsRetryable(err))
	})

	t.Run("per-image error is permanent", func(t *testing.T) {
		annotate, _ := fakeAnnotate(&visionpb.AnnotateImageResponse{
			Error: &status.Status{Code: 3, Message: "bad image data"},
		}, nil)
		_, err := newGCPClientWith(annotate, nil, testTables).Analyze(context.Background(), sampleImage)
		require.Error(t, err)
		assert.False(t, common.IsRetryable(err))
		assert.Contains(t, err.Error(), "bad image data")
	})
}

func TestNearestColor(t *testing.T) {
	assert.Equal(t, "Black", NearestColor(10, 10, 10))
	assert.Equal(t, "White", NearestColor(250, 250, 245))
	assert.Equal(t, "Maroon", NearestColor(120, 10, 20))
	assert.Equal(t, "Beige", NearestColor(215, 195, 165))
}
