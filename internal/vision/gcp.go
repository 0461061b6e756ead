package vision

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	visionapi "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/pattern"
)

const maxDominantColors = 3

// annotateFunc sends one batch annotation request.
type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// LabelTables are the keyword tables labels are matched against, one per axis.
type LabelTables struct {
	Category pattern.Table
	Color    pattern.Table
	Material pattern.Table
	Pattern  pattern.Table
}

// gcpClient maps Cloud Vision labels and dominant colors onto attribute axes.
type gcpClient struct {
	annotate annotateFunc
	close    func() error
	category *pattern.Matcher
	color    *pattern.Matcher
	material *pattern.Matcher
	pattern  *pattern.Matcher
}

func newGCPClient(ctx context.Context, cfg Config, tables LabelTables) (*gcpClient, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := visionapi.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	annotate := func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}
	return newGCPClientWith(annotate, client.Close, tables), nil
}

func newGCPClientWith(annotate annotateFunc, closer func() error, tables LabelTables) *gcpClient {
	return &gcpClient{
		annotate: annotate,
		close:    closer,
		category: pattern.NewMatcher(tables.Category),
		color:    pattern.NewMatcher(tables.Color),
		material: pattern.NewMatcher(tables.Material),
		pattern:  pattern.NewMatcher(tables.Pattern),
	}
}

// Analyze runs label detection and image properties on the image.
func (c *gcpClient) Analyze(ctx context.Context, img Image) (model.ImageAttributes, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img.Data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 20},
					{Type: visionpb.Feature_IMAGE_PROPERTIES},
				},
			},
		},
	}

	resp, err := c.annotate(ctx, req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("vision BatchAnnotateImages: %w", err), Retryable: true}
	}
	if resp == nil || len(resp.GetResponses()) == 0 || resp.GetResponses()[0] == nil {
		return nil, fmt.Errorf("%w: gcp", ErrEmptyResponse)
	}

	r0 := resp.GetResponses()[0]
	if r0.GetError() != nil && r0.GetError().GetMessage() != "" {
		return nil, common.Permanent(fmt.Errorf("vision annotate error: %s", r0.GetError().GetMessage()))
	}

	attrs := model.ImageAttributes{}
	var categories, colors, materials, patterns []model.Candidate
	for _, label := range r0.GetLabelAnnotations() {
		desc := strings.ToLower(strings.TrimSpace(label.GetDescription()))
		if desc == "" {
			continue
		}
		score := round2(float64(label.GetScore()))

		// Category labels keep their own wording; the resolver reads keywords.
		if _, ok := c.category.Match(desc); ok {
			categories = appendBest(categories, model.Candidate{Name: desc, Confidence: score})
		}
		if m, ok := c.color.Match(desc); ok {
			colors = appendBest(colors, model.Candidate{Name: m.Term, Confidence: score})
		}
		if m, ok := c.material.Match(desc); ok {
			materials = appendBest(materials, model.Candidate{Name: m.Term, Confidence: score})
		}
		if m, ok := c.pattern.Match(desc); ok {
			patterns = appendBest(patterns, model.Candidate{Name: m.Term, Confidence: score})
		}
	}

	if len(colors) == 0 {
		colors = dominantColors(r0.GetImagePropertiesAnnotation())
	}

	for axis, list := range map[model.Axis][]model.Candidate{
		model.AxisCategory: categories,
		model.AxisColor:    colors,
		model.AxisMaterial: materials,
		model.AxisPattern:  patterns,
	} {
		if len(list) == 0 {
			continue
		}
		sortCandidates(list)
		attrs[axis] = model.Ranked(list...)
	}

	return attrs, nil
}

// Close releases the underlying API client.
func (c *gcpClient) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

type namedColor struct {
	name    string
	r, g, b float64
}

var palette = []namedColor{
	{"Black", 0, 0, 0},
	{"White", 255, 255, 255},
	{"Grey", 128, 128, 128},
	{"Red", 200, 30, 30},
	{"Maroon", 128, 0, 0},
	{"Blue", 30, 60, 200},
	{"Navy", 0, 0, 128},
	{"Green", 40, 140, 60},
	{"Olive", 128, 128, 0},
	{"Yellow", 240, 220, 40},
	{"Orange", 240, 140, 30},
	{"Pink", 240, 150, 180},
	{"Purple", 120, 50, 150},
	{"Brown", 120, 75, 40},
	{"Beige", 220, 200, 160},
}

// NearestColor names the palette color closest to an RGB value.
func NearestColor(r, g, b float64) string {
	best := palette[0].name
	bestDist := math.MaxFloat64
	for _, c := range palette {
		d := (c.r-r)*(c.r-r) + (c.g-g)*(c.g-g) + (c.b-b)*(c.b-b)
		if d < bestDist {
			best, bestDist = c.name, d
		}
	}
	return best
}

func dominantColors(props *visionpb.ImageProperties) []model.Candidate {
	info := props.GetDominantColors()
	if info == nil {
		return nil
	}

	colors := append([]*visionpb.ColorInfo(nil), info.GetColors()...)
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].GetScore() > colors[j].GetScore()
	})

	var out []model.Candidate
	for _, ci := range colors {
		if len(out) == maxDominantColors {
			break
		}
		rgb := ci.GetColor()
		if rgb == nil {
			continue
		}
		name := NearestColor(float64(rgb.GetRed()), float64(rgb.GetGreen()), float64(rgb.GetBlue()))
		out = appendBest(out, model.Candidate{Name: name, Confidence: round2(float64(ci.GetScore()))})
	}
	return out
}

// appendBest adds a candidate, keeping the higher confidence for repeated names.
func appendBest(list []model.Candidate, c model.Candidate) []model.Candidate {
	for i := range list {
		if strings.EqualFold(list[i].Name, c.Name) {
			if c.Confidence > list[i].Confidence {
				list[i].Confidence = c.Confidence
			}
			return list
		}
	}
	return append(list, c)
}

func sortCandidates(list []model.Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Confidence > list[j].Confidence
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
