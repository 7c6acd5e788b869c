package payload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func TestParse_RejectsNonObject(t *testing.T) {
	_, err := Parse([]byte(`[1, 2, 3]`))
	requireValidationError(t, err, "payload")
}

func TestParse_RejectsMissingItems(t *testing.T) {
	_, err := Parse([]byte(`{"header_info": {}}`))
	requireValidationError(t, err, "items")
}

func TestParse_RejectsEmptyItems(t *testing.T) {
	_, err := Parse([]byte(`{"items": []}`))
	requireValidationError(t, err, "items")
}

func TestParse_RejectsItemsNotList(t *testing.T) {
	_, err := Parse([]byte(`{"items": {"name": "x"}}`))
	requireValidationError(t, err, "items")
}

func TestParse_RejectsIncompleteItem(t *testing.T) {
	_, err := Parse([]byte(`{"items": [{"name": "Gasoline 95", "amount": 40.5}]}`))
	requireValidationError(t, err, "items[0]")
}

func TestParse_RejectsNonNumericAmount(t *testing.T) {
	_, err := Parse([]byte(`{"items": [{"name": "x", "amount": "lots", "quantity": 1}]}`))
	requireValidationError(t, err, "items[0].amount")
}

func TestParse_RejectsNonNumericQuantity(t *testing.T) {
	_, err := Parse([]byte(`{"items": [{"name": "x", "amount": 1, "quantity": true}]}`))
	requireValidationError(t, err, "items[0].quantity")
}

func TestParse_RejectsBadHeaderInfo(t *testing.T) {
	_, err := Parse([]byte(`{"items": [{"name": "x", "amount": 1, "quantity": 1}], "header_info": [1]}`))
	requireValidationError(t, err, "header_info")
}

func TestParse_RejectsBadTransactionValue(t *testing.T) {
	_, err := Parse([]byte(`{
		"items": [{"name": "x", "amount": 1, "quantity": 1}],
		"transaction_info": {"received": "soon"}
	}`))
	requireValidationError(t, err, "transaction_info.received")
}

func TestParse_NullTransactionFieldsAllowed(t *testing.T) {
	rec, err := Parse([]byte(`{
		"items": [{"name": "x", "amount": 2, "quantity": 3}],
		"transaction_info": {"received": null, "change": null, "discount": null, "total": null}
	}`))
	require.NoError(t, err)
	requireDecimal(t, "6", rec.Total)
}

func TestValidationError_Message(t *testing.T) {
	err := validationErrorf("items[0].amount", "must be a number")
	assert.Equal(t, `invalid payload: field "items[0].amount" must be a number`, err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
