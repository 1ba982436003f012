package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	c := NewStatusClassifier()

	tests := []struct {
		name string
		text *string
		want StatusFlags
	}{
		{
			name: "empty text is an extraction error",
			text: strPtr(""),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "whitespace only is an extraction error",
			text: strPtr("   \t "),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "diverging birth date",
			text: strPtr("Data de nascimento informada no pedido está divergente"),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "not collected",
			text: strPtr("status não coletado"),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "inconsistency occurred",
			text: strPtr("Ocorreu uma inconsistência ."),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "exempt declaration",
			text: strPtr("Consta apresentação de declaração anual de isento para o exercício"),
			want: StatusFlags{NotDeclared: 1},
		},
		{
			name: "not in database yet",
			text: strPtr("Sua declaração ainda não está na base de dados da Receita"),
			want: StatusFlags{NotDeclared: 1},
		},
		{
			name: "refund credited",
			text: strPtr("Situação da restituição: Creditada"),
			want: StatusFlags{TaxRefund: 1},
		},
		{
			name: "refund rescheduled to bank",
			text: strPtr("reagendada para crédito no banco em outubro"),
			want: StatusFlags{TaxRefund: 1},
		},
		{
			name: "refund returned to treasury",
			text: strPtr("Devolvida à Receita Federal, em razão do não resgate no prazo"),
			want: StatusFlags{TaxRefund: 1},
		},
		{
			name: "declaration processed",
			text: strPtr("sua declaração já foi processada."),
			want: StatusFlags{TaxRefund: 1},
		},
		{
			name: "anything else means tax to pay",
			text: strPtr("Declaração com imposto a pagar no exercício"),
			want: StatusFlags{TaxToPay: 1},
		},
		{
			name: "matching is case-insensitive",
			text: strPtr("NÃO COLETADO"),
			want: StatusFlags{ExtractionError: 1},
		},
		{
			name: "nil text matches nothing",
			text: nil,
			want: StatusFlags{TaxToPay: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyTaxToPayIsNOR(t *testing.T) {
	c := NewStatusClassifier()

	texts := []*string{
		nil,
		strPtr(""),
		strPtr("não coletado"),
		strPtr("declaração consta como isento"),
		strPtr("enviada para crédito no banco"),
		strPtr("imposto a pagar"),
	}

	for _, text := range texts {
		f := c.Classify(text)
		wantToPay := 0
		if f.ExtractionError == 0 && f.NotDeclared == 0 && f.TaxRefund == 0 {
			wantToPay = 1
		}
		assert.Equal(t, wantToPay, f.TaxToPay)
	}
}
