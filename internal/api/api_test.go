package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictRequestAcceptsStringsAndNumbers(t *testing.T) {
	var req PredictRequest
	err := json.Unmarshal([]byte(`{"age":"61","ca":0,"thal":2,"oldpeak":1.5,"p_name":null}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "61", req["age"])
	assert.Equal(t, "0", req["ca"])
	assert.Equal(t, "2", req["thal"])
	assert.Equal(t, "1.5", req["oldpeak"])
	assert.Equal(t, "", req["p_name"])
}

func TestPredictRequestRejectsNested(t *testing.T) {
	var req PredictRequest
	err := json.Unmarshal([]byte(`{"age":{"v":1}}`), &req)
	assert.Error(t, err)
}
