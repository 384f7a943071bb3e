// Package stockrule classifica o nível de estoque dos artigos e formata preços
// para os badges do catálogo. Todas as funções são puras e seguras para uso concorrente.
package stockrule

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dropindrop/internal/domain"
)

// priceLocale define a convenção de agrupamento de milhares usada nos preços.
var priceLocale = language.French

// IsOutOfStock é verdadeiro somente quando o estoque é zero.
func IsOutOfStock(stock int) bool {
	return stock == 0
}

// IsLowStock é verdadeiro quando stock <= minStock. Esgotado também conta como baixo.
func IsLowStock(stock, minStock int) bool {
	return stock <= minStock
}

// CalculateStockStatus avalia em ordem de prioridade: esgotado, baixo, ok.
// Estoque zero nunca pode ser classificado apenas como baixo.
func CalculateStockStatus(stock, minStock int) domain.StockStatus {
	switch {
	case IsOutOfStock(stock):
		return domain.StockOut
	case IsLowStock(stock, minStock):
		return domain.StockLow
	default:
		return domain.StockOK
	}
}

// Status classifica um StockInfo.
func Status(info domain.StockInfo) domain.StockStatus {
	return CalculateStockStatus(info.Stock, info.MinStock)
}

// FormatPrice agrupa os milhares do valor segundo a convenção do locale,
// com um espaço simples como separador: 1000000 -> "1 000 000".
// Sem símbolo de moeda e sem casas decimais.
func FormatPrice(amount int64) string {
	// message.Printer guarda estado interno; um por chamada.
	p := message.NewPrinter(priceLocale)
	return strings.Map(normalizeSpace, p.Sprintf("%d", amount))
}

// normalizeSpace troca os espaços tipográficos do CLDR (U+00A0, U+202F) por um espaço ASCII.
func normalizeSpace(r rune) rune {
	if unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}
