package providers

import (
	"context"

	"infinite-experiment/logbook/internal/models/dtos"
)

// SuggestionProvider proposes registry keys for unrecognized headers
type SuggestionProvider interface {
	SuggestColumns(ctx context.Context, req dtos.SuggestColumnsRequest) (*dtos.ColumnSuggestions, error)
}

// FormatDetector locates the date and aircraft columns and the timestamp format of a batch
type FormatDetector interface {
	DetectFormat(ctx context.Context, req dtos.DetectFormatRequest) (*dtos.FormatDetection, error)
}

// AttributeInferrer corrects a raw aircraft identifier and infers its capability attributes
type AttributeInferrer interface {
	InferAircraft(ctx context.Context, rawIdentifier string, fromImageSource bool) (*dtos.AircraftAttributes, error)
}
