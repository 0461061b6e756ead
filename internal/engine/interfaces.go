package engine

import (
	"context"

	"github.com/Veraticus/facet-flow/internal/model"
)

// ImageAnalyzer reports ranked attribute observations for an image path or URL.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, ref string) (model.ImageAttributes, error)
}

// TextGenerator produces descriptive text for a product.
type TextGenerator interface {
	Generate(ctx context.Context, product model.ProductInfo, image model.ImageAttributes) (model.GeneratedText, error)
}

// Observer receives batch progress after each row.
type Observer interface {
	Progress(done, total int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(done, total int)

// Progress calls f.
func (f ObserverFunc) Progress(done, total int) {
	f(done, total)
}
