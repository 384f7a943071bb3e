package samedayrule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dropindrop/internal/domain"
	"dropindrop/internal/rules/samedayrule"
)

func threeGroups() []domain.SameDayValidation {
	return []domain.SameDayValidation{
		{
			GroupID:           "group-1",
			GroupName:         "Clientes Cocody",
			AllowedArticleIDs: []string{"a1", "a2"},
		},
		{
			GroupID:           "group-2",
			GroupName:         "Clientes Plateau",
			AllowedArticleIDs: []string{"a1"},
			BlockedArticleIDs: []string{"a2"},
			Warnings:          []string{"a2 já enviado hoje"},
		},
		{
			GroupID:           "group-3",
			GroupName:         "Clientes Yopougon",
			BlockedArticleIDs: []string{"a1", "a2"},
			Warnings:          []string{"a1 e a2 já enviados hoje"},
		},
	}
}

func TestSummarize_ThreeGroupScenario(t *testing.T) {
	summary := samedayrule.Summarize(threeGroups())

	assert.Equal(t, domain.ValidationSummary{
		TotalGroups:            3,
		ClearGroups:            1,
		PartiallyBlockedGroups: 1,
		BlockedGroups:          1,
		TotalWarnings:          2,
	}, summary)
}

func TestSummarize_CountsAddUp(t *testing.T) {
	batches := [][]domain.SameDayValidation{
		nil,
		threeGroups(),
		threeGroups()[:1],
		threeGroups()[2:],
		append(threeGroups(), threeGroups()...),
	}

	for _, v := range batches {
		s := samedayrule.Summarize(v)
		assert.Equal(t, s.TotalGroups, s.ClearGroups+s.PartiallyBlockedGroups+s.BlockedGroups)
		assert.Equal(t, len(samedayrule.AllWarnings(v)), s.TotalWarnings)
	}
}

func TestCanSendDrop(t *testing.T) {
	t.Run("lote vazio", func(t *testing.T) {
		assert.False(t, samedayrule.CanSendDrop(nil))
		assert.False(t, samedayrule.CanSendDrop([]domain.SameDayValidation{}))
	})

	t.Run("todos bloqueados", func(t *testing.T) {
		v := threeGroups()[2:]
		v = append(v, domain.SameDayValidation{GroupID: "group-4", BlockedArticleIDs: []string{"a1"}})
		assert.False(t, samedayrule.CanSendDrop(v))
	})

	t.Run("um grupo com artigo permitido basta", func(t *testing.T) {
		assert.True(t, samedayrule.CanSendDrop(threeGroups()))
		assert.True(t, samedayrule.CanSendDrop(threeGroups()[1:]))
	})
}

func TestAllWarnings_PreservesOrderAndDuplicates(t *testing.T) {
	v := []domain.SameDayValidation{
		{GroupID: "g1", Warnings: []string{"w1", "w2"}},
		{GroupID: "g2"},
		{GroupID: "g3", Warnings: []string{"w1"}},
	}

	assert.Equal(t, []string{"w1", "w2", "w1"}, samedayrule.AllWarnings(v))
	assert.Empty(t, samedayrule.AllWarnings(nil))
}
