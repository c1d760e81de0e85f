package types

// CompositionEntry is the per-order breakdown nested inside a LineItem.
// Field names mirror the store schema and must stay stable on the wire.
type CompositionEntry struct {
	OP                string  `json:"op"`
	Quantidade        float64 `json:"quantidade"`
	QtdSeparada       float64 `json:"qtd_separada"`
	Concluido         bool    `json:"concluido"`
	OKConf            bool    `json:"ok_conf"`
	TRConf            bool    `json:"tr_conf"`
	FaltaConf         bool    `json:"falta_conf"`
	Obs               string  `json:"obs,omitempty"`
	MotivoDivergencia string  `json:"motivo_divergencia,omitempty"`
}

// LineItem is one consolidated product row within a pick or verification
// batch. Items are keyed by Codigo; a batch never holds two items with the
// same code.
type LineItem struct {
	Codigo             string             `json:"codigo"`
	Descricao          string             `json:"descricao"`
	Unidade            string             `json:"unidade"`
	Quantidade         float64            `json:"quantidade"`
	QtdSeparada        float64            `json:"qtd_separada"`
	Separado           bool               `json:"separado"`
	Transferido        bool               `json:"transferido"`
	Falta              bool               `json:"falta"`
	OK                 bool               `json:"ok"`
	Obs                string             `json:"obs,omitempty"`
	OriginalSolicitado *float64           `json:"original_solicitado,omitempty"`
	Composicao         []CompositionEntry `json:"composicao"`
}

// LineItems is the jsonb-serialized item list stored on batch records.
type LineItems []LineItem

// SumSeparada returns the fulfilled quantity accumulated across the
// item's composition entries.
func (li LineItem) SumSeparada() float64 {
	var total float64
	for _, entry := range li.Composicao {
		total += entry.QtdSeparada
	}
	return total
}

// AllConcluido reports whether every composition entry is marked done.
func (li LineItem) AllConcluido() bool {
	for _, entry := range li.Composicao {
		if !entry.Concluido {
			return false
		}
	}
	return true
}

// AllConfirmed reports whether every composition entry carries both
// verification confirmations.
func (li LineItem) AllConfirmed() bool {
	for _, entry := range li.Composicao {
		if !entry.OKConf || !entry.TRConf {
			return false
		}
	}
	return true
}

// HasUnresolvedShortage reports whether any entry is flagged short/over
// without a recorded discrepancy reason.
func (li LineItems) HasUnresolvedShortage() bool {
	for _, item := range li {
		for _, entry := range item.Composicao {
			if entry.FaltaConf && entry.MotivoDivergencia == "" {
				return true
			}
		}
	}
	return false
}

// Find returns a pointer to the item with the given product code, or nil.
func (li LineItems) Find(codigo string) *LineItem {
	for i := range li {
		if li[i].Codigo == codigo {
			return &li[i]
		}
	}
	return nil
}
