// Package respond padroniza as respostas JSON da API, de sucesso e de erro.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dropindrop/internal/domain"
	apperror "dropindrop/internal/errors"
	"dropindrop/internal/pkg/logger"
)

// JSON escreve data com o status informado. data nil gera corpo vazio.
func JSON(w http.ResponseWriter, log logger.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Falha ao codificar JSON de resposta", err)
	}
}

// Error traduz err para o status HTTP e o corpo domain.ErrorResponse.
// Erros 5xx são logados com a causa raiz; 4xx apenas em debug.
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	}

	JSON(w, log, status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// Decode lê o corpo JSON em dst, rejeitando campos desconhecidos.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}
