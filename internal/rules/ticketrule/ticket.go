// Package ticketrule gera e valida códigos de ticket de retirada e decide
// se um pedido pode ser retirado a partir do seu estado de pagamento e de retirada.
package ticketrule

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"time"
)

const (
	ticketPrefix = "TKT"
	suffixSpace  = 10000 // sufixo de 4 dígitos
)

var ticketPattern = regexp.MustCompile(`^TKT-[0-9]{8}-[0-9]{4}$`)

// Generator produz códigos TKT-YYYYMMDD-NNNN. A data vem de Now em Location
// e o sufixo de Entropy. O zero value usa o relógio do sistema, horário local e crypto/rand.
type Generator struct {
	Now      func() time.Time
	Location *time.Location
	Entropy  io.Reader
}

// NewGenerator cria um gerador com relógio do sistema e crypto/rand no fuso informado.
func NewGenerator(loc *time.Location) *Generator {
	return &Generator{Now: time.Now, Location: loc, Entropy: rand.Reader}
}

// Generate devolve um novo código. A unicidade é apenas provável; quem persiste
// o código deve garantir a restrição de unicidade e tentar de novo em caso de colisão.
func (g *Generator) Generate() (string, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	loc := time.Local
	if g.Location != nil {
		loc = g.Location
	}
	entropy := rand.Reader
	if g.Entropy != nil {
		entropy = g.Entropy
	}

	n, err := rand.Int(entropy, big.NewInt(suffixSpace))
	if err != nil {
		return "", fmt.Errorf("falha ao gerar sufixo do ticket: %w", err)
	}

	return fmt.Sprintf("%s-%s-%04d", ticketPrefix, now().In(loc).Format("20060102"), n.Int64()), nil
}

// GenerateTicketCode gera um código com a data local atual.
// crypto/rand só falha se o sistema operacional não fornecer entropia.
func GenerateTicketCode() string {
	code, err := (&Generator{}).Generate()
	if err != nil {
		panic(err)
	}
	return code
}

// IsValidTicketFormat é verdadeiro somente para "TKT-" + 8 dígitos + "-" + 4 dígitos.
func IsValidTicketFormat(code string) bool {
	return ticketPattern.MatchString(code)
}

// TicketDate extrai a data embutida no código. ok é falso para códigos malformados
// ou com data inexistente (e.g. 20251340).
func TicketDate(code string, loc *time.Location) (time.Time, bool) {
	if !IsValidTicketFormat(code) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("20060102", code[4:12], loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
