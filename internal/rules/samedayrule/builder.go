package samedayrule

import (
	"fmt"
	"time"

	"dropindrop/internal/domain"
)

// SentToday mapeia groupID -> conjunto de articleIDs já enviados hoje ao grupo.
type SentToday map[string]map[string]bool

// BuildValidations monta um SameDayValidation por grupo. Cada artigo do drop vai
// para Allowed, ou para Blocked (com um aviso) se já foi enviado hoje ao grupo.
// A partição dos artigos vale por construção.
func BuildValidations(articles []domain.DropArticle, groups []domain.WhatsAppGroup, sent SentToday) []domain.SameDayValidation {
	validations := make([]domain.SameDayValidation, 0, len(groups))

	for _, g := range groups {
		v := domain.SameDayValidation{
			GroupID:           g.ID,
			GroupName:         g.Name,
			AllowedArticleIDs: make([]string, 0, len(articles)),
			BlockedArticleIDs: make([]string, 0),
			Warnings:          make([]string, 0),
		}

		for _, a := range articles {
			if sent[g.ID][a.ID] {
				v.BlockedArticleIDs = append(v.BlockedArticleIDs, a.ID)
				v.Warnings = append(v.Warnings,
					fmt.Sprintf("O artigo \"%s\" já foi enviado hoje ao grupo \"%s\".", a.Name, g.Name))
				continue
			}
			v.AllowedArticleIDs = append(v.AllowedArticleIDs, a.ID)
		}

		validations = append(validations, v)
	}

	return validations
}

// CheckPartition verifica que Allowed e Blocked são disjuntos e cobrem exatamente articleIDs.
func CheckPartition(v domain.SameDayValidation, articleIDs []string) error {
	expected := make(map[string]bool, len(articleIDs))
	for _, id := range articleIDs {
		expected[id] = true
	}

	seen := make(map[string]bool, len(articleIDs))
	for _, list := range [][]string{v.AllowedArticleIDs, v.BlockedArticleIDs} {
		for _, id := range list {
			if !expected[id] {
				return fmt.Errorf("grupo %s: artigo %s não pertence ao drop", v.GroupID, id)
			}
			if seen[id] {
				return fmt.Errorf("grupo %s: artigo %s aparece mais de uma vez", v.GroupID, id)
			}
			seen[id] = true
		}
	}

	if len(seen) != len(expected) {
		return fmt.Errorf("grupo %s: %d de %d artigos classificados", v.GroupID, len(seen), len(expected))
	}
	return nil
}

// DayWindow devolve o início (inclusivo) e o fim (exclusivo) do dia civil de now em loc.
func DayWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
