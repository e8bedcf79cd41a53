package mapping

import (
	"context"
	"fmt"
	"strings"

	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	"infinite-experiment/logbook/internal/providers"
	"infinite-experiment/logbook/internal/registry"
)

const DefaultSampleRows = 5

// Resolver builds ColumnMappings. The suggestion collaborator is advisory:
// every proposal is checked against the registry here.
type Resolver struct {
	reg        *registry.Registry
	suggester  providers.SuggestionProvider
	sampleRows int
}

// NewResolver returns a Resolver. A nil suggester maps exact header matches
// only; sampleRows <= 0 uses DefaultSampleRows.
func NewResolver(reg *registry.Registry, suggester providers.SuggestionProvider, sampleRows int) *Resolver {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	return &Resolver{reg: reg, suggester: suggester, sampleRows: sampleRows}
}

// SampleSize is the number of rows sent to collaborators
func (r *Resolver) SampleSize() int {
	return r.sampleRows
}

// Resolve maps headers without format-detection hints
func (r *Resolver) Resolve(ctx context.Context, headers []string, sampleRows [][]string) (*ColumnMapping, error) {
	return r.ResolveWithFormat(ctx, headers, sampleRows, nil)
}

// ResolveWithFormat maps headers. Exact header matches are taken first, then
// the detected date and aircraft columns, then collaborator proposals in
// header order; the first claimant of a key keeps it. Columns left over are
// retained when they carry duration data and dropped otherwise. Collaborator
// failure is recorded as a warning, never returned.
func (r *Resolver) ResolveWithFormat(ctx context.Context, headers []string, sampleRows [][]string, format *dtos.FormatDetection) (*ColumnMapping, error) {
	if len(headers) == 0 {
		return nil, models.NewError(constants.ErrCodeInvalidRequest, "", fmt.Errorf("no headers"))
	}

	sample := r.Sample(sampleRows)
	m := &ColumnMapping{Assignments: make([]Assignment, len(headers))}
	claimed := make(map[string]bool)

	assign := func(i int, key, source string) bool {
		if claimed[key] || m.Assignments[i].Disposition == Mapped {
			return false
		}
		claimed[key] = true
		m.Assignments[i].Disposition = Mapped
		m.Assignments[i].Key = key
		m.Assignments[i].Source = source
		return true
	}

	for i, h := range headers {
		m.Assignments[i] = Assignment{Index: i, Header: h, Disposition: Dropped}
	}

	for i, h := range headers {
		if def, ok := r.reg.MatchHeader(h); ok {
			assign(i, def.Key, SourceExact)
		}
	}

	if format != nil {
		if idx := format.DateTimeColumnIndex; idx != nil && *idx >= 0 && *idx < len(headers) {
			assign(*idx, registry.KeyDateTime, SourceDetected)
		}
		if idx := format.AircraftColumnIndex; idx != nil && *idx >= 0 && *idx < len(headers) {
			assign(*idx, registry.KeyAircraftType, SourceDetected)
		}
	}

	var pending []int
	for i := range headers {
		if m.Assignments[i].Disposition != Mapped {
			pending = append(pending, i)
		}
	}

	proposals := map[int]string{}
	if len(pending) > 0 {
		var err error
		proposals, err = r.suggest(ctx, headers, sample, pending)
		if err != nil {
			m.Warnings = append(m.Warnings, fmt.Sprintf("%s: column suggestions unavailable, only exact header matches were mapped", constants.ErrCodeCollaboratorUnavailable))
			logging.Warn("Column suggestions unavailable, falling back to exact matching",
				"headers", len(headers),
				"unmatched", len(pending),
				"error", err.Error(),
			)
		}
	}

	for _, i := range pending {
		proposed, ok := proposals[i]
		if !ok {
			continue
		}
		def, known := r.reg.Lookup(proposed)
		if !known || def.Generated {
			logging.Debug("Rejected column suggestion", "header", headers[i], "proposed_key", proposed)
			continue
		}
		assign(i, def.Key, SourceSuggested)
	}

	for _, i := range pending {
		a := &m.Assignments[i]
		if a.Disposition == Mapped {
			continue
		}
		if r.proposesDuration(proposals[i]) || isDurationColumn(a.Header, column(sample, i)) {
			a.Disposition = Retained
		}
	}

	return m, nil
}

// Sample returns at most SampleSize rows
func (r *Resolver) Sample(rows [][]string) [][]string {
	if len(rows) > r.sampleRows {
		return rows[:r.sampleRows]
	}
	return rows
}

// suggest asks the collaborator about the pending columns and returns the
// proposed keys by column index
func (r *Resolver) suggest(ctx context.Context, headers []string, sample [][]string, pending []int) (map[int]string, error) {
	if r.suggester == nil {
		return nil, models.ErrCollaboratorUnavailable
	}

	req := dtos.SuggestColumnsRequest{
		Headers:    make([]string, len(pending)),
		SampleRows: make([][]string, len(sample)),
		Registry:   r.reg.Describe(),
	}
	for j, i := range pending {
		req.Headers[j] = headers[i]
	}
	for k, row := range sample {
		projected := make([]string, len(pending))
		for j, i := range pending {
			if i < len(row) {
				projected[j] = row[i]
			}
		}
		req.SampleRows[k] = projected
	}

	resp, err := r.suggester.SuggestColumns(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, models.NewError(constants.ErrCodeCollaboratorUnavailable, "", fmt.Errorf("empty suggestion response"))
	}

	// a header may repeat; each suggestion is consumed by the first pending
	// column with that header
	proposals := make(map[int]string)
	for _, s := range resp.RenameSuggestions {
		want := strings.TrimSpace(s.OriginalHeader)
		for _, i := range pending {
			if _, taken := proposals[i]; taken {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(headers[i]), want) {
				proposals[i] = strings.ToUpper(strings.TrimSpace(s.ProposedKey))
				break
			}
		}
	}
	return proposals, nil
}

func (r *Resolver) proposesDuration(key string) bool {
	if key == "" {
		return false
	}
	def, ok := r.reg.Lookup(key)
	return ok && def.IsDuration()
}

func column(rows [][]string, i int) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if i < len(row) {
			out = append(out, row[i])
		}
	}
	return out
}
