package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labonzique/comcast-asrs-handler/internal/core/domain"
)

func TestRecordPipeline_Process(t *testing.T) {
	p := NewRecordPipeline(domain.DefaultSettings())
	docs := []domain.TextDocument{
		{Name: "A1_OF12345.txt", Text: "PON OF12345\nFA: 12345678\n2 0240315:"},
		{Name: "A2_OF12345E1.txt", Text: "PON OF12345E1\nFA: 87654321"},
	}

	result, err := p.Process(context.Background(), docs)
	require.NoError(t, err)

	assert.Len(t, result.Raw, 2)
	require.Len(t, result.Consolidated, 1)
	require.Len(t, result.Final, 1)

	rec := result.Final[0]
	assert.Equal(t, "OF12345", rec.Key())
	assert.Equal(t, "OF12345E1", domain.Deref(rec.Pon1))
	assert.Equal(t, "OF12345", domain.Deref(rec.Uni))
	assert.Nil(t, rec.Pon2)
	assert.Equal(t, "12345678", domain.Deref(rec.SecondaryCode))
	assert.Equal(t, "2024-03-15", domain.Deref(rec.ExtractedDate))
	assert.Equal(t, []string{"A1_OF12345.pdf", "A2_OF12345E1.pdf"}, rec.AllOutputFiles)
	assert.Empty(t, result.Report.Warnings)
}

func TestRecordPipeline_ReportsSlotConflicts(t *testing.T) {
	p := NewRecordPipeline(domain.DefaultSettings())

	result, err := p.Process(context.Background(), []domain.TextDocument{
		{Name: "a.txt", Text: "OF555"},
		{Name: "b.txt", Text: "OF555"},
	})
	require.NoError(t, err)

	require.Len(t, result.Report.Warnings, 1)
	assert.Equal(t, domain.StageGroup, result.Report.Warnings[0].Stage)
	assert.Equal(t, "OF555", result.Report.Warnings[0].Document)
}

func TestRecordPipeline_CancelledContext(t *testing.T) {
	p := NewRecordPipeline(domain.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, []domain.TextDocument{{Name: "a.txt", Text: "OF1"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordPipeline_Empty(t *testing.T) {
	p := NewRecordPipeline(domain.DefaultSettings())

	result, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Final)
}

func TestRecordPipeline_ConcurrentCallsAreIndependent(t *testing.T) {
	p := NewRecordPipeline(domain.DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("OF%05d", i)
			result, err := p.Process(context.Background(), []domain.TextDocument{
				{Name: code + ".txt", Text: code},
			})
			if assert.NoError(t, err) && assert.Len(t, result.Final, 1) {
				assert.Equal(t, code, result.Final[0].Key())
			}
		}(i)
	}
	wg.Wait()
}
