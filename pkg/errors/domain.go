package errors

import "fmt"

// Domain failure constructors for the logistics workflows. Each carries the
// user-facing message the UI shows as a transient alert; none of them crash
// the process.

// Stage identifies where a conflicting order id was found. Precedence when
// reporting: historico > conferencia > separacao.
type Stage string

const (
	StageHistorico   Stage = "historico"
	StageConferencia Stage = "conferencia"
	StageSeparacao   Stage = "separacao"
)

// OrderConflict tags one conflicting order id with the stage where it lives.
type OrderConflict struct {
	OP    string `json:"op"`
	Stage Stage  `json:"stage"`
}

// EmptySelection signals a consolidation request without any matching orders.
func EmptySelection() *Error {
	return New(CodeValidation, "Nenhuma ordem selecionada")
}

// MissingDestination signals a consolidation request without a destination warehouse.
func MissingDestination() *Error {
	return New(CodeValidation, "Armazém de destino não informado")
}

// DuplicateOrder signals that one or more selected orders already live in an
// active batch or in the history.
func DuplicateOrder(conflicts []OrderConflict) *Error {
	return New(CodeConflict, "Ordem já consta em separação, conferência ou histórico").
		WithDetails(map[string]any{"conflitos": conflicts})
}

// LockedByOther signals that the batch is claimed by another worker. Surfaced
// directly to the user; there is no retry queue behind it.
func LockedByOther(holder string) *Error {
	return New(CodeConflict, fmt.Sprintf("Bloqueio: Em uso por %s", holder)).
		WithDetails(map[string]any{"usuario_atual": holder})
}

// IncompletePick blocks the send-to-verification transition.
func IncompletePick(pending []string) *Error {
	return New(CodeStateConflict, "Itens ainda não foram separados E transferidos").
		WithDetails(map[string]any{"pendentes": pending})
}

// IncompleteVerification blocks the finalize transition.
func IncompleteVerification(pending []string) *Error {
	return New(CodeStateConflict, "Itens ainda não foram conferidos E transferidos").
		WithDetails(map[string]any{"pendentes": pending})
}

// Store wraps an underlying record-store failure. Multi-step transitions are
// not compensated: the raw error surfaces and partial state is left for
// manual correction.
func Store(err error, op string) *Error {
	return Wrap(CodeDependency, err, fmt.Sprintf("falha no armazenamento: %s", op))
}
