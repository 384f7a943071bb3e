// Package cli reúne os comandos do dropctl, a ferramenta de operação do balcão.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dropindrop/internal/domain"
	"dropindrop/internal/rules/stockrule"
	"dropindrop/internal/rules/ticketrule"
)

// AdminCreator é o trecho do userservice usado pelo comando admin.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
}

// Deps agrupa o que os comandos precisam. Admins só é chamado pelo comando
// admin create, para que os comandos puros funcionem sem banco.
type Deps struct {
	Location *time.Location
	Now      func() time.Time
	Admins   func(ctx context.Context) (AdminCreator, func(), error)
}

// NewRootCommand monta a árvore de comandos do dropctl.
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "dropctl",
		Short:         "Ferramenta de operação do Drop-In-Drop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(ticketCommand(deps), stockCommand(), priceCommand(), adminCommand(deps))
	return root
}

func ticketCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Gera e confere códigos de ticket de retirada",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Gera um código TKT-YYYYMMDD-NNNN com a data de hoje",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen := ticketrule.NewGenerator(deps.Location)
			gen.Now = deps.Now
			code, err := gen.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check CODE",
		Short: "Confere o formato de um código e mostra a data embutida",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(strings.TrimSpace(args[0]))
			if !ticketrule.IsValidTicketFormat(code) {
				return fmt.Errorf("ticket inválido: %q (esperado TKT-YYYYMMDD-NNNN)", args[0])
			}
			out := cmd.OutOrStdout()
			if d, ok := ticketrule.TicketDate(code, deps.Location); ok {
				fmt.Fprintf(out, "%s válido, emitido em %s\n", code, d.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintf(out, "%s tem formato válido, mas a data embutida não existe\n", code)
			return nil
		},
	}

	cmd.AddCommand(newCmd, checkCmd)
	return cmd
}

func stockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stock STOCK MIN_STOCK",
		Short: "Classifica um nível de estoque (out, low ou ok)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("estoque inválido %q: %w", args[0], err)
			}
			minStock, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("estoque mínimo inválido %q: %w", args[1], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), stockrule.CalculateStockStatus(stock, minStock))
			return nil
		},
	}
}

func priceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "price AMOUNT",
		Short: "Formata um valor inteiro em FCFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("valor inválido %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s FCFA\n", stockrule.FormatPrice(amount))
			return nil
		},
	}
}

func adminCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Gerencia operadores administradores",
	}

	createCmd := &cobra.Command{
		Use:   "create EMAIL PASSWORD",
		Short: "Cria um operador com papel admin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Admins == nil {
				return fmt.Errorf("criação de admin indisponível: banco não configurado")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			admins, closeFn, err := deps.Admins(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := admins.CreateAdmin(ctx, domain.UserRegistration{Email: args[0], Password: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s criado (id %s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.AddCommand(createCmd)
	return cmd
}
