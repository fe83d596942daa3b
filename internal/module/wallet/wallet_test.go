package wallet

import (
	"net/http"
	"testing"

	"challenge-settlement-system/internal/global/response"
	"challenge-settlement-system/test"

	"github.com/stretchr/testify/assert"
)

func TestChargeHandler_Rejects(t *testing.T) {
	ledger = NewLedger(nil)

	status, resp := test.DoRequest(t, Charge, http.MethodPost, map[string]any{"amount": 0}, test.AsUser(1, 0))
	assert.Equal(t, http.StatusBadRequest, status)
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)

	status, resp = test.DoRequest(t, Charge, http.MethodPost, map[string]any{"description": "no amount"}, test.AsUser(1, 0))
	assert.Equal(t, http.StatusBadRequest, status)
	test.ErrorEqual(t, response.ErrInvalidRequest, resp)

	status, resp = test.DoRequest(t, Charge, http.MethodPost, map[string]any{"amount": 10})
	assert.Equal(t, http.StatusUnauthorized, status)
	test.ErrorEqual(t, response.ErrUnauthorized, resp)
}
