// Package samedayrule implementa a regra do mesmo dia: um artigo não é enviado
// mais de uma vez por dia civil ao mesmo grupo WhatsApp.
//
// As funções de decisão (CanSendDrop, AllWarnings, Summarize) só leem os registros
// recebidos e assumem que Allowed e Blocked particionam os artigos do drop.
package samedayrule

import "dropindrop/internal/domain"

// CanSendDrop é verdadeiro se pelo menos um grupo ainda pode receber algum artigo.
// Um lote vazio nunca pode ser enviado.
func CanSendDrop(validations []domain.SameDayValidation) bool {
	for _, v := range validations {
		if len(v.AllowedArticleIDs) > 0 {
			return true
		}
	}
	return false
}

// AllWarnings concatena os avisos de todos os grupos, na ordem de entrada, sem deduplicar.
func AllWarnings(validations []domain.SameDayValidation) []string {
	warnings := make([]string, 0)
	for _, v := range validations {
		warnings = append(warnings, v.Warnings...)
	}
	return warnings
}

// Summarize classifica cada grupo como livre, parcialmente bloqueado ou bloqueado.
func Summarize(validations []domain.SameDayValidation) domain.ValidationSummary {
	summary := domain.ValidationSummary{TotalGroups: len(validations)}

	for _, v := range validations {
		switch {
		case len(v.BlockedArticleIDs) == 0:
			summary.ClearGroups++
		case len(v.AllowedArticleIDs) == 0:
			summary.BlockedGroups++
		default:
			summary.PartiallyBlockedGroups++
		}
		summary.TotalWarnings += len(v.Warnings)
	}

	return summary
}
