package picking

// CreateInput carries a consolidation request from the controllers.
type CreateInput struct {
	SelectedOps []string `json:"ordens" validate:"required,min=1,dive,required"`
	Armazem     string   `json:"armazem" validate:"required"`
	Documento   string   `json:"documento"`
	Responsavel string   `json:"responsavel"`
	// UseLotLabel picks the compact lot naming used by the import-driven
	// flow; the default is the "OP <first> - <last>" range form.
	UseLotLabel bool `json:"usar_lote"`
}

// ItemUpdateInput mutates one line item of a claimed batch. Nil pointers
// leave the corresponding field untouched.
type ItemUpdateInput struct {
	Separado    *bool   `json:"separado"`
	Transferido *bool   `json:"transferido"`
	Falta       *bool   `json:"falta"`
	OK          *bool   `json:"ok"`
	Obs         *string `json:"obs"`

	Composicao []CompositionUpdateInput `json:"composicao"`
}

// CompositionUpdateInput mutates one per-order entry, addressed by op.
type CompositionUpdateInput struct {
	OP          string   `json:"op" validate:"required"`
	QtdSeparada *float64 `json:"qtd_separada"`
	Concluido   *bool    `json:"concluido"`
	Obs         *string  `json:"obs"`
}

// SendInput finalizes the pick stage and moves the batch to verification.
type SendInput struct {
	Documento   string `json:"documento" validate:"required"`
	Responsavel string `json:"responsavel" validate:"required"`
}

// BatchView augments the stored batch with its computed progress.
type BatchView struct {
	ID        string `json:"id"`
	Documento string `json:"documento"`
	Nome      string `json:"nome"`
	Armazem   string `json:"armazem"`
	Status    string `json:"status"`
	Urgencia  string `json:"urgencia"`
	Progresso int    `json:"progresso"`
}
