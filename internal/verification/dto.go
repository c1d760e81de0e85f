package verification

// ItemUpdateInput mutates one line item of a claimed verification batch.
// Nil pointers leave the corresponding field untouched.
type ItemUpdateInput struct {
	OK    *bool   `json:"ok"`
	Falta *bool   `json:"falta"`
	Obs   *string `json:"obs"`

	Composicao []CompositionUpdateInput `json:"composicao"`
}

// CompositionUpdateInput carries the per-order confirmation flags recorded
// while checking a batch against the physical transfer.
type CompositionUpdateInput struct {
	OP                string   `json:"op" validate:"required"`
	QtdSeparada       *float64 `json:"qtd_separada"`
	OKConf            *bool    `json:"ok_conf"`
	TRConf            *bool    `json:"tr_conf"`
	FaltaConf         *bool    `json:"falta_conf"`
	MotivoDivergencia *string  `json:"motivo_divergencia"`
}

// FinalizeInput closes the verification and writes the history snapshot.
type FinalizeInput struct {
	ConferidoPor string `json:"conferido_por" validate:"required"`
}

// RevertInput sends a batch back to the pick stage. The confirmation flag
// guards against accidental reverts from the UI.
type RevertInput struct {
	Confirmado bool `json:"confirmado"`
}
