package conversation

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// Category classifies a failed LLM call. It drives both the retry policy and
// the user-facing message appended to the thread.
type Category int

const (
	// CategoryValidation covers malformed input: empty content, bad base64
	// media. Never retried.
	CategoryValidation Category = iota
	// CategoryAuth covers 401/403-class failures. Not retried.
	CategoryAuth
	// CategoryQuota covers 429-class rate limiting. Not retried.
	CategoryQuota
	// CategoryTransient covers timeouts and network failures. Retried with
	// backoff.
	CategoryTransient
	// CategoryServer covers 5xx upstream failures. Retried with backoff.
	CategoryServer
)

// Validation sentinels.
var (
	ErrNoContent    = errors.New("conversation: nenhum conteúdo (texto, imagem ou áudio) fornecido")
	ErrInvalidMedia = errors.New("conversation: mídia inválida")
)

// Classify maps an error from the LLM path to its category.
func Classify(err error) Category {
	if errors.Is(err, ErrNoContent) || errors.Is(err, ErrInvalidMedia) {
		return CategoryValidation
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return CategoryAuth
		case apiErr.Code == 429:
			return CategoryQuota
		case apiErr.Code >= 500:
			return CategoryServer
		case apiErr.Code == 400:
			return CategoryValidation
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission"):
		return CategoryAuth
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource exhausted"):
		return CategoryQuota
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "connection"):
		return CategoryTransient
	}
	return CategoryServer
}

// Retryable reports whether a failure in this category is worth another
// attempt. Validation-class errors fail fast; auth and quota problems will
// not fix themselves within one send.
func (c Category) Retryable() bool {
	return c == CategoryTransient || c == CategoryServer
}

// UserMessage returns the friendly Portuguese text shown in the chat when a
// send fails terminally. Raw error text never reaches users.
func (c Category) UserMessage() string {
	switch c {
	case CategoryValidation:
		return "Não consegui entender o conteúdo enviado. Escreva uma mensagem ou anexe um arquivo válido."
	case CategoryAuth:
		return "Erro de autenticação com o serviço de IA. Verifique a configuração da chave de API."
	case CategoryQuota:
		return "Limite de requisições atingido. Tente novamente em alguns minutos."
	case CategoryTransient:
		return "A requisição demorou muito. Tente novamente."
	case CategoryServer:
		return "Erro interno do serviço de IA. Tente novamente em alguns instantes."
	}
	return "Falha ao conectar com a Lyla.IA. Verifique sua conexão ou tente novamente."
}

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryAuth:
		return "auth"
	case CategoryQuota:
		return "quota"
	case CategoryTransient:
		return "transient"
	case CategoryServer:
		return "server"
	}
	return "unknown"
}
