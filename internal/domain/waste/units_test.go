package waste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
)

func TestConvertQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  string
		from string
		to   string
		want string
	}{
		{"kg to gr", "1.5", "kg", "gr", "1500.0000"},
		{"g to kg", "250", "g", "kg", "0.2500"},
		{"gr alias", "40", "gr", "g", "40.0000"},
		{"l to ml", "0.75", "L", "ml", "750.0000"},
		{"ml to l", "330", "ml", "lt", "0.3300"},
		{"same unit", "3", "adet", "adet", "3.0000"},
		{"same unit different case", "3", "Adet", "adet", "3.0000"},
		{"blank means stock unit", "12.5", "", "ml", "12.5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, err := types.ParseQuantity(tt.qty)
			require.NoError(t, err)

			got, err := ConvertQuantity(qty, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestConvertQuantity_Incompatible(t *testing.T) {
	_, err := ConvertQuantity(types.NewQuantity(1), "kg", "ml")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = ConvertQuantity(types.NewQuantity(1), "adet", "g")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestConvertQuantity_TooSmall(t *testing.T) {
	_, err := ConvertQuantity(types.Quantity(1), "g", "kg")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestInput_Validate(t *testing.T) {
	pid, iid := id.New(), id.New()
	one := types.NewQuantity(1)

	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"product", Input{ProductID: &pid, Quantity: one, Reason: "dropped", Size: "L"}, false},
		{"ingredient", Input{IngredientID: &iid, Quantity: one, Reason: "expired"}, false},
		{"both targets", Input{ProductID: &pid, IngredientID: &iid, Quantity: one, Reason: "x"}, true},
		{"no target", Input{Quantity: one, Reason: "x"}, true},
		{"zero quantity", Input{ProductID: &pid, Reason: "x"}, true},
		{"missing reason", Input{ProductID: &pid, Quantity: one, Reason: "  "}, true},
		{"size on ingredient", Input{IngredientID: &iid, Quantity: one, Reason: "x", Size: "M"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
